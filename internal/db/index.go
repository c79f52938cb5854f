package db

// IndexInfo is the subset of FT.INFO the service reports.
// Redis and Valkey expose different keys; fields absent from a reply stay zero.
type IndexInfo struct {
	Name       string
	NumDocs    int64
	NumRecords int64
	Indexing   bool
	State      string
	VectorDim  int
}

// IsValidIdentifier returns true if s matches [a-zA-Z0-9_:-]+.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		isSpecial := r == '_' || r == ':' || r == '-'
		if !isAlpha && !isDigit && !isSpecial {
			return false
		}
	}
	return true
}
