package inventory

// Prompt labels used by EditCrop.
const (
	PromptName     = "name"
	PromptQuantity = "quantity"
	PromptPrice    = "price"
)

// Prompter collects confirmations and values from the user.
type Prompter interface {
	Confirm(question string) bool
	// Prompt asks for a value, offering current as the default. ok is false
	// when the user cancels.
	Prompt(label, current string) (value string, ok bool)
}

// Answers is a Prompter with responses collected up front, for UIs that
// gather input in a form or modal before dispatching. Labels without an
// answer keep their current value.
type Answers struct {
	Confirmed bool
	Cancelled bool
	Values    map[string]string
}

func (a Answers) Confirm(string) bool { return a.Confirmed && !a.Cancelled }

func (a Answers) Prompt(label, current string) (string, bool) {
	if a.Cancelled {
		return "", false
	}
	if v, ok := a.Values[label]; ok {
		return v, true
	}
	return current, true
}

type declineAll struct{}

func (declineAll) Confirm(string) bool { return false }
func (declineAll) Prompt(string, string) (string, bool) { return "", false }
