package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// Entry is one encoded chain: the state string over the structural
// alphabet, the amino-acid sequence, the header, and the flattened
// C-alpha trace (all x, then all y, then all z).
type Entry struct {
	VersionedRecord
	ID         string    `json:"id"`
	BatchID    string    `json:"batch_id"`
	Name       string    `json:"name"`
	FileNumber int       `json:"file_number"`
	Sequence   string    `json:"sequence"`
	States     string    `json:"states"`
	CA         []float32 `json:"ca"`
}

// LookupEntry ties an entry back to the source file it came from.
type LookupEntry struct {
	ID         string `json:"id"`
	EntryName  string `json:"entry_name"`
	FileNumber int    `json:"file_number"`
}

// BatchSummary describes one encode run over a set of input files.
type BatchSummary struct {
	VersionedRecord
	ID              string `json:"id"`
	CreatedAtUTC    string `json:"created_at_utc"`
	Files           int    `json:"files"`
	FailedFiles     int    `json:"failed_files"`
	Chains          int    `json:"chains"`
	Residues        int    `json:"residues"`
	InvalidResidues int    `json:"invalid_residues"`
}
