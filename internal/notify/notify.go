// Package notify carries the user-facing toast attached to API responses.
package notify

type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// Notification is non-blocking feedback: a title and a one-line description.
type Notification struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Variant     Variant `json:"variant"`
}

func Success(description string) *Notification {
	return &Notification{Title: "Success", Description: description, Variant: VariantDefault}
}

func Error(description string) *Notification {
	return &Notification{Title: "Error", Description: description, Variant: VariantDestructive}
}

func (n *Notification) IsError() bool {
	return n != nil && n.Variant == VariantDestructive
}
