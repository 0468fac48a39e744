package authz

// Outcome is the policy table verdict for one (role, action) pair.
// AllowOwned defers the final decision to the ownership resolver.
type Outcome int

const (
	OutcomeDeny Outcome = iota
	OutcomeAllowOwned
	OutcomeAllowAll
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAllowAll:
		return "allow_all"
	case OutcomeAllowOwned:
		return "allow_owned"
	default:
		return "deny"
	}
}

// Policy is the static role × action table. Pairs absent from the table
// resolve to OutcomeDeny, so the table is total and fails closed.
type Policy map[Role]map[Action]Outcome

// Decide looks up the outcome for a single role. Unknown roles and unlisted
// actions are denied.
func (p Policy) Decide(role Role, action Action) Outcome {
	actions, ok := p[role]
	if !ok {
		return OutcomeDeny
	}
	out, ok := actions[action]
	if !ok {
		return OutcomeDeny
	}
	return out
}

// DecideRoles folds the outcome over every role the actor carries. The most
// permissive applicable outcome wins: allow_all dominates allow_owned
// dominates deny.
func (p Policy) DecideRoles(roles []Role, action Action) Outcome {
	out := OutcomeDeny
	for _, role := range roles {
		if v := p.Decide(role, action); v > out {
			out = v
		}
	}
	return out
}

// DefaultPolicy returns the built-in permission table. Audit entries are
// written by the system after committed mutations, never by a direct actor
// action, so no audit.create row exists.
func DefaultPolicy() Policy {
	return Policy{
		RoleUser: {
			ActionUserRead:    OutcomeAllowOwned,
			ActionUserList:    OutcomeAllowOwned,
			ActionUserUpdate:  OutcomeAllowOwned,
			ActionUserDelete:  OutcomeAllowOwned,
			ActionProjectRead: OutcomeAllowAll,
			ActionProjectList: OutcomeAllowAll,
			ActionTaskRead:    OutcomeAllowAll,
			ActionTaskList:    OutcomeAllowAll,
			// An assignee may update their task even when the parent
			// project belongs to someone else.
			ActionTaskUpdate: OutcomeAllowOwned,
		},
		RoleManager: {
			ActionUserRead:      OutcomeAllowOwned,
			ActionUserList:      OutcomeAllowOwned,
			ActionUserUpdate:    OutcomeAllowOwned,
			ActionUserDelete:    OutcomeAllowOwned,
			ActionProjectCreate: OutcomeAllowOwned,
			ActionProjectRead:   OutcomeAllowAll,
			ActionProjectList:   OutcomeAllowAll,
			ActionProjectUpdate: OutcomeAllowOwned,
			ActionProjectDelete: OutcomeAllowOwned,
			ActionTaskCreate:    OutcomeAllowOwned,
			ActionTaskRead:      OutcomeAllowAll,
			ActionTaskList:      OutcomeAllowAll,
			ActionTaskUpdate:    OutcomeAllowOwned,
			ActionTaskDelete:    OutcomeAllowOwned,
		},
		RoleAdmin: {
			ActionUserCreate:    OutcomeAllowAll,
			ActionUserRead:      OutcomeAllowAll,
			ActionUserList:      OutcomeAllowAll,
			ActionUserUpdate:    OutcomeAllowAll,
			ActionUserDelete:    OutcomeAllowAll,
			ActionProjectCreate: OutcomeAllowAll,
			ActionProjectRead:   OutcomeAllowAll,
			ActionProjectList:   OutcomeAllowAll,
			ActionProjectUpdate: OutcomeAllowAll,
			ActionProjectDelete: OutcomeAllowAll,
			ActionTaskCreate:    OutcomeAllowAll,
			ActionTaskRead:      OutcomeAllowAll,
			ActionTaskList:      OutcomeAllowAll,
			ActionTaskUpdate:    OutcomeAllowAll,
			ActionTaskDelete:    OutcomeAllowAll,
			ActionAuditRead:     OutcomeAllowAll,
			ActionAuditList:     OutcomeAllowAll,
		},
	}
}
