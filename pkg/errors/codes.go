package errors

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes.
const (
	ErrCodeInternal     ErrorCode = "COMMON_001"
	ErrCodeBadRequest   ErrorCode = "COMMON_002"
	ErrCodeNotFound     ErrorCode = "COMMON_003"
	ErrCodeValidation   ErrorCode = "COMMON_004"
	ErrCodePrecondition ErrorCode = "COMMON_005"
	ErrCodeTimeout      ErrorCode = "COMMON_006"
)

// Vocabulary module error codes.
const (
	ErrCodeVocabularyNotLoaded ErrorCode = "VOC_001"
	ErrCodeVocabularyParse     ErrorCode = "VOC_002"
	ErrCodeVocabularyFile      ErrorCode = "VOC_003"
	ErrCodeDrugNotFound        ErrorCode = "VOC_004"
)

// Mapping module error codes.
const (
	ErrCodeMappingFailed    ErrorCode = "MAP_001"
	ErrCodeOverrideParse    ErrorCode = "MAP_002"
	ErrCodeExportFailed     ErrorCode = "MAP_003"
	ErrCodeThresholdInvalid ErrorCode = "MAP_004"
)

// Interaction module error codes.
const (
	ErrCodeInteractionFile  ErrorCode = "INT_001"
	ErrCodeInteractionParse ErrorCode = "INT_002"
)

// Graph store error codes.
const (
	ErrCodeGraphConnection ErrorCode = "GRAPH_001"
	ErrCodeGraphQuery      ErrorCode = "GRAPH_002"
	ErrCodeGraphWrite      ErrorCode = "GRAPH_003"
)

// Synthea ingestion error codes.
const (
	ErrCodeSyntheaFile  ErrorCode = "SYN_001"
	ErrCodeSyntheaParse ErrorCode = "SYN_002"
)
