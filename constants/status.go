package constants

// Stage is the pipeline stage a job-log row belongs to.
type Stage string

// Stable values (store these exact strings in the job log).
const (
	StageEnhance Stage = "ENHANCE" // ocrmypdf text-layer pass
	StageOCR     Stage = "OCR"     // text extraction
	StageParse   Stage = "PARSE"   // text -> structured record
	StageDeliver Stage = "DELIVER" // webhook delivery
)

// Per-document result statuses, also used in batch reports.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)
