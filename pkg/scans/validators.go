package scans

type SubmitScanPayload struct {
	// ISBN is checked by the handler rather than the validator so that a
	// missing field and a malformed code produce distinct error codes.
	ISBN      string `json:"isbn" validate:"max=50"`
	ScannerID string `json:"scanner_id" validate:"required,max=100"`
}

type ListScansQuery struct {
	Limit     int     `query:"limit" json:"limit,omitempty" default:"50" validate:"min=1,max=200"`
	Offset    int     `query:"offset" json:"offset,omitempty" validate:"min=0"`
	ScannerID *string `query:"scanner_id" json:"scanner_id,omitempty" validate:"omitempty,max=100"`
	ISBN      *string `query:"isbn" json:"isbn,omitempty" validate:"omitempty,isbn_code"`
}
