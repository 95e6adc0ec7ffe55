package domain

// NextDecision is the sentinel successor at final_review: the caller must
// explicitly approve or reject instead of auto-advancing.
const NextDecision ApplicationStatus = "decision"

// Step is one node of the guided workflow graph. Next is empty for
// terminal nodes. The graph is advisory for the guided advance path; it
// does not restrict direct status assignment.
type Step struct {
	Status            ApplicationStatus
	Name              string
	RequiredDocuments []DocumentType
	RequiredChecks    []string
	Next              ApplicationStatus
}

// workflowSteps is the statically defined step graph of the origination
// pipeline: pending -> document_verification -> credit_assessment ->
// final_review -> {approved | rejected}.
var workflowSteps = map[ApplicationStatus]Step{
	ApplicationPending: {
		Status:         ApplicationPending,
		Name:           "Application Received",
		RequiredChecks: []string{"application_complete"},
		Next:           ApplicationDocumentVerification,
	},
	ApplicationDocumentVerification: {
		Status: ApplicationDocumentVerification,
		Name:   "Document Verification",
		RequiredDocuments: []DocumentType{
			DocumentTypeID,
			DocumentTypeProofOfResidence,
			DocumentTypeBankStatement,
			DocumentTypePayslip,
		},
		RequiredChecks: []string{"documents_verified"},
		Next:           ApplicationCreditAssessment,
	},
	ApplicationCreditAssessment: {
		Status:         ApplicationCreditAssessment,
		Name:           "Credit Assessment",
		RequiredChecks: []string{"credit_score", "affordability"},
		Next:           ApplicationFinalReview,
	},
	ApplicationFinalReview: {
		Status:         ApplicationFinalReview,
		Name:           "Final Review",
		RequiredChecks: []string{"final_signoff"},
		Next:           NextDecision,
	},
	ApplicationApproved: {
		Status: ApplicationApproved,
		Name:   "Approved",
	},
	ApplicationRejected: {
		Status: ApplicationRejected,
		Name:   "Rejected",
	},
}

// StepFor looks up the workflow node for a status. The funded state is not
// part of the guided graph.
func StepFor(status ApplicationStatus) (Step, bool) {
	step, ok := workflowSteps[status]
	return step, ok
}

// StepName returns the display name for a status, falling back to the raw
// status string for states outside the graph.
func StepName(status ApplicationStatus) string {
	if step, ok := workflowSteps[status]; ok {
		return step.Name
	}
	return string(status)
}
