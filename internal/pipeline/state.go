package pipeline

// State tracks verification progress through the KG-first flow.
// Web states are only reached when the KG verdict is not decisive or
// the mode skips the KG branch.
type State string

const (
	StateInit         State = "INIT"
	StateLinked       State = "LINKED"
	StateKGRetrieved  State = "KG_RETRIEVED"
	StateKGVerdict    State = "KG_VERDICT"
	StateWebRetrieved State = "WEB_RETRIEVED"
	StateWebVerdict   State = "WEB_VERDICT"
	StateDone         State = "DONE"
)
