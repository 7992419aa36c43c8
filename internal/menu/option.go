package menu

// Option represents a selectable entry shown to the operator.
type Option struct {
	Label       string
	Description string
	Handler     func() error
	Color       string
	Enabled     bool
}
