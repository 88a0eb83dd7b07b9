package usecase

// CreateLeadInput é o corpo do POST /leads.
type CreateLeadInput struct {
	ID    string `json:"id"`
	Name  string `json:"nome"`
	Email string `json:"email"`
	Phone string `json:"telefone"`
}

// MessageOutput é a confirmação devolvida por create/convert/delete.
type MessageOutput struct {
	Message string `json:"message"`
}
