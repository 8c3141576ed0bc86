package ports

import "context"

// ContactInput is a contact-form submission. Phone and Subject are optional.
type ContactInput struct {
	Name    string
	Email   string
	Phone   string
	Subject string
	Message string
}

// ContactService forwards contact-form submissions to the site operator.
type ContactService interface {
	Submit(ctx context.Context, input ContactInput) error
}
