package enums

// LifecycleState is the derived onboarding position of an account. It is not
// stored; it falls out of the email-verified and profile-completed flags.
type LifecycleState string

const (
	LifecycleCreated             LifecycleState = "created"
	LifecyclePendingVerification LifecycleState = "pending_verification"
	LifecycleProfileIncomplete   LifecycleState = "profile_incomplete"
	LifecycleActive              LifecycleState = "active"
)

// String implements fmt.Stringer.
func (l LifecycleState) String() string {
	return string(l)
}
