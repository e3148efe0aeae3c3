package extract

import (
	"regexp"
	"sort"
)

// Vocabulary and pattern tables for field extraction. These are immutable
// configuration data: parsing control flow never embeds literals of its own,
// so the tables can be tested and extended independently.

// truckMakes is the fixed vocabulary of commercial truck manufacturers,
// scanned in order when no MAKE label is present.
var truckMakes = []string{
	"FREIGHTLINER",
	"PETERBILT",
	"KENWORTH",
	"INTERNATIONAL",
	"WESTERN STAR",
	"VOLVO",
	"MACK",
	"STERLING",
	"HINO",
	"ISUZU",
	"CHEVROLET",
	"GMC",
	"FORD",
	"RAM",
	"DODGE",
}

// makeAliases normalizes common shorthand to the canonical manufacturer name.
var makeAliases = map[string]string{
	"CHEVY":       "CHEVROLET",
	"INTL":        "INTERNATIONAL",
	"WESTERN":     "WESTERN STAR",
	"WESTERNSTAR": "WESTERN STAR",
	"FRTLNR":      "FREIGHTLINER",
}

// truckModels is the fixed vocabulary of known model names, scanned in order
// when no MODEL label is present. Only consulted after a make was found.
var truckModels = []string{
	"CASCADIA",
	"CORONADO",
	"CENTURY",
	"COLUMBIA",
	"579",
	"567",
	"389",
	"379",
	"T680",
	"T880",
	"W900",
	"T800",
	"VNL",
	"VNR",
	"ANTHEM",
	"PINNACLE",
	"GRANITE",
	"LONESTAR",
	"LT625",
	"PROSTAR",
	"F-750",
	"F-650",
	"SILVERADO",
}

// insuranceCarriers is the fixed vocabulary of known commercial carriers.
var insuranceCarriers = []string{
	"PROGRESSIVE",
	"GREAT WEST CASUALTY",
	"GREAT WEST",
	"NORTHLAND",
	"CANAL INSURANCE",
	"SENTRY",
	"NATIONWIDE",
	"STATE FARM",
	"GEICO",
	"ALLSTATE",
	"TRAVELERS",
	"ZURICH",
	"LIBERTY MUTUAL",
	"OOIDA",
	"BERKSHIRE HATHAWAY",
	"OLD REPUBLIC",
}

// stateNames maps full US state names to their postal abbreviations.
var stateNames = map[string]string{
	"ALABAMA": "AL", "ALASKA": "AK", "ARIZONA": "AZ", "ARKANSAS": "AR",
	"CALIFORNIA": "CA", "COLORADO": "CO", "CONNECTICUT": "CT", "DELAWARE": "DE",
	"FLORIDA": "FL", "GEORGIA": "GA", "HAWAII": "HI", "IDAHO": "ID",
	"ILLINOIS": "IL", "INDIANA": "IN", "IOWA": "IA", "KANSAS": "KS",
	"KENTUCKY": "KY", "LOUISIANA": "LA", "MAINE": "ME", "MARYLAND": "MD",
	"MASSACHUSETTS": "MA", "MICHIGAN": "MI", "MINNESOTA": "MN", "MISSISSIPPI": "MS",
	"MISSOURI": "MO", "MONTANA": "MT", "NEBRASKA": "NE", "NEVADA": "NV",
	"NEW HAMPSHIRE": "NH", "NEW JERSEY": "NJ", "NEW MEXICO": "NM", "NEW YORK": "NY",
	"NORTH CAROLINA": "NC", "NORTH DAKOTA": "ND", "OHIO": "OH", "OKLAHOMA": "OK",
	"OREGON": "OR", "PENNSYLVANIA": "PA", "RHODE ISLAND": "RI", "SOUTH CAROLINA": "SC",
	"SOUTH DAKOTA": "SD", "TENNESSEE": "TN", "TEXAS": "TX", "UTAH": "UT",
	"VERMONT": "VT", "VIRGINIA": "VA", "WASHINGTON": "WA", "WEST VIRGINIA": "WV",
	"WISCONSIN": "WI", "WYOMING": "WY",
}

// makeAliasOrder and stateNameOrder give the maps a stable scan order so
// repeated extraction of the same text yields the same record.
var (
	makeAliasOrder = sortedKeys(makeAliases)
	stateNameOrder = sortedKeys(stateNames)
)

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// validEndorsements is the set of CDL endorsement letter codes.
var validEndorsements = map[string]bool{
	"H": true, // hazardous materials
	"N": true, // tank vehicle
	"P": true, // passenger
	"S": true, // school bus
	"T": true, // double/triple trailers
	"X": true, // tank + hazmat combined
	"W": true, // tow truck
}

// Vehicle identifier patterns. Labeled patterns run before bare-shape
// fallbacks; within each list the first match wins.
var (
	vinLabeled = regexp.MustCompile(`(?i)\bVIN\b[\s#:.]*([A-HJ-NPR-Z0-9IOQ]{11,20})`)
	vinBare    = regexp.MustCompile(`\b[A-HJ-NPR-Z0-9]{17}\b`)

	plateLabeled = regexp.MustCompile(`(?i)(?:LICENSE\s*PLATE|PLATE\s*(?:NO\.?|NUMBER)?|TAG\s*(?:NO\.?|NUMBER)?)[\s#:.]*([A-Z0-9][A-Z0-9 -]{1,9})`)
	plateShapes  = []*regexp.Regexp{
		regexp.MustCompile(`\b[A-Z]{2,3}[- ]?\d{3,4}\b`),
		regexp.MustCompile(`\b\d{1,3}[- ]?[A-Z]{2,3}[- ]?\d{1,4}\b`),
		regexp.MustCompile(`\b[A-Z]\d{2}[- ]?[A-Z]{3}\b`),
	}

	yearPattern = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)
	dotPattern  = regexp.MustCompile(`(?i)\bDOT\s*(?:NUMBER|NO\.?|#)?[\s:.]*(\d{5,8})`)

	makeLabeled  = regexp.MustCompile(`(?i)\b(?:MAKE|MFR|MANUFACTURER)[\s:.]+([A-Za-z][A-Za-z-]{2,19})`)
	modelLabeled = regexp.MustCompile(`(?i)\bMODEL[\s:.]+([A-Za-z0-9][A-Za-z0-9-]{1,15})`)

	regNumberLabeled = regexp.MustCompile(`(?i)\b(?:REGISTRATION|REG)\.?\s*(?:NUMBER|NO\.?|#)[\s:.]*([A-Z0-9-]{4,15})`)
	regNumberShape   = regexp.MustCompile(`\b[A-Z]{2}[- ]?\d{6,10}\b`)
	stateLabeled     = regexp.MustCompile(`(?i)\bSTATE(?:\s+OF)?[\s:.]+([A-Za-z]{2})\b`)
	ownerLabeled     = regexp.MustCompile(`(?i)\b(?:REGISTERED\s+(?:OWNER|TO)|OWNER|REGISTRANT)[\s:.]+([A-Z0-9][A-Z0-9 &.,'-]*(?:LLC|INC|CORP|CO|COMPANY|TRUCKING|TRANSPORT|LOGISTICS|FREIGHT)\.?|[A-Z][A-Za-z .'-]+)`)

	carrierLabeled = regexp.MustCompile(`(?i)\b(?:INSURANCE\s+(?:COMPANY|CARRIER)|CARRIER|INSURER|UNDERWRITTEN\s+BY)[\s:.]+([A-Z][A-Za-z &.,'-]{2,40})`)
	policyLabeled  = regexp.MustCompile(`(?i)\bPOL(?:ICY)?\.?\s*(?:NUMBER|NO\.?|#)?[\s:.]*([A-Z0-9][A-Z0-9-]{4,19})`)
	coverageAmount = regexp.MustCompile(`\$[\d,]+(?:\.\d{2})?`)
)

// Driver document patterns.
var (
	// Name rules run in order; the first match with at least two
	// space-separated tokens wins.
	nameRules = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:DRIVER\s+NAME|PATIENT\s+NAME|NAME)[ \t:.]+([A-Z][A-Za-z.'-]*(?:[ \t]+[A-Z][A-Za-z.'-]*)+)`),
		regexp.MustCompile(`(?m)^\s*([A-Z][a-z]+[ \t]+[A-Z][a-z]+)\s*$`),
		regexp.MustCompile(`(?i)\b(?:LICENSE\s+HOLDER|DRIVER)[ \t:.]+([A-Z][A-Za-z.'-]*(?:[ \t]+[A-Z][A-Za-z.'-]*)+)`),
	}

	dobPattern = regexp.MustCompile(`(?i)\b(?:DATE\s+OF\s+BIRTH|DOB|BORN)[\s:.]*(` + datePattern + `)`)

	employeeIDPattern = regexp.MustCompile(`(?i)\b(?:EMPLOYEE\s*(?:ID|NUMBER|NO\.?|#)|EMP\s*(?:ID|#))[\s:.]*([A-Z0-9-]{2,15})`)

	medCertNumber  = regexp.MustCompile(`(?i)\b(?:CERTIFICATE|CERT)\.?\s*(?:NUMBER|NO\.?|#)[\s:.]*([A-Z0-9-]{4,20})`)
	examinerName   = regexp.MustCompile(`(?i)\b(?:MEDICAL\s+EXAMINER|EXAMINER)(?:'S)?\s*(?:NAME)?\s*[:.]\s*([A-Z][A-Za-z.,' -]{2,40})`)
	nationalReg    = regexp.MustCompile(`(?i)\bNATIONAL\s+REGISTRY\s*(?:NUMBER|NO\.?|#)?[\s:.]*(\d{6,12})`)
	medIssueDate   = regexp.MustCompile(`(?i)\b(?:ISSUED?\s*(?:DATE|ON)?|DATE\s+OF\s+EXAM(?:INATION)?|EXAM\s+DATE)[\s:.]*(` + datePattern + `)`)
	medExpiryDate  = regexp.MustCompile(`(?i)\b(?:EXPIR\w*\s*(?:DATE)?|VALID\s+(?:UNTIL|THROUGH))[\s:.]*(` + datePattern + `)`)
	restrictionRow = regexp.MustCompile(`(?im)^\s*RESTRICTIONS?[\s:.]*(.+)$`)

	cdlNumberLabeled = regexp.MustCompile(`(?i)\b(?:CDL|LICENSE|DL)\s*(?:NUMBER|NO\.?|#)[\s:.]*([A-Z0-9-]{8,20})`)
	cdlClassLabeled  = regexp.MustCompile(`(?i)\bCLASS[\s:.]*([ABC])\b`)
	cdlStateDMV      = regexp.MustCompile(`\b([A-Z]{2})\s+(?:STATE\s+)?DEPARTMENT\s+OF\s+MOTOR\s+VEHICLES`)
	cdlIssueDate     = regexp.MustCompile(`(?i)\b(?:ISSUE[D]?\s*(?:DATE|ON)?|ISS)[\s:.]*(` + datePattern + `)`)
	cdlExpiryDate    = regexp.MustCompile(`(?i)\b(?:EXPIR\w*\s*(?:DATE)?|EXP)[\s:.]*(` + datePattern + `)`)

	endorsementLine    = regexp.MustCompile(`(?m)^\s*([A-Z])\s*[-–]\s*(.+)$`)
	endorsementSection = regexp.MustCompile(`(?i)\bENDORSEMENTS?\b`)
	endorsementCompact = regexp.MustCompile(`(?i)\bENDORSEMENTS?[\s:.]*([A-Z][A-Z, ]*)`)
)
