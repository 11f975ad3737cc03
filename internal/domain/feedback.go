package domain

// Feedback is a message left through the contact form.
type Feedback struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Content string `json:"content"`
}
