package common

const (
	ContentTypeJson        = "application/json"
	ContentTypeProblemJson = "application/problem+json"

	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"

	PathDigest   = "/digest"
	PathValidate = "/validate"

	PathDocuments           = "/documents"
	PathDocumentsName       = "/documents/{name}"
	PathDocumentsValidation = "/documents/{name}/validation"

	PathReadiness = "/readiness"

	QueryCompleteness = "completeness"
	QueryFlow         = "flow"
	QueryNaming       = "naming"
)
