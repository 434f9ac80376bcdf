package lifecycle

type OrganizationStatus string

const (
	OrganizationPending   OrganizationStatus = "pending"
	OrganizationActive    OrganizationStatus = "active"
	OrganizationSuspended OrganizationStatus = "suspended"
	OrganizationRejected  OrganizationStatus = "rejected"
)

type OrganizationAction string

const (
	OrganizationApprove    OrganizationAction = "approve"
	OrganizationReject     OrganizationAction = "reject"
	OrganizationSuspend    OrganizationAction = "suspend"
	OrganizationReactivate OrganizationAction = "reactivate"
)

var OrganizationStatuses = []OrganizationStatus{
	OrganizationPending, OrganizationActive, OrganizationSuspended, OrganizationRejected,
}

var OrganizationActions = []OrganizationAction{
	OrganizationApprove, OrganizationReject, OrganizationSuspend, OrganizationReactivate,
}

var organizationTable = table[OrganizationStatus, OrganizationAction]{
	OrganizationPending: {
		OrganizationApprove: OrganizationActive,
		OrganizationReject:  OrganizationRejected,
	},
	OrganizationActive: {
		OrganizationSuspend: OrganizationSuspended,
	},
	OrganizationSuspended: {
		OrganizationReactivate: OrganizationActive,
	},
	OrganizationRejected: {
		OrganizationApprove: OrganizationActive,
	},
}

func TransitionOrganization(state OrganizationStatus, action OrganizationAction) (OrganizationStatus, error) {
	return organizationTable.transition(EntityOrganization, state, action)
}

// OrganizationActionRequiresAdmin is true for every organization action.
func OrganizationActionRequiresAdmin(OrganizationAction) bool {
	return true
}

func ParseOrganizationStatus(s string) (OrganizationStatus, error) {
	return parse(organizationTable, EntityOrganization, s)
}

func ParseOrganizationAction(s string) (OrganizationAction, error) {
	return parseAction(OrganizationActions, EntityOrganization, s)
}
