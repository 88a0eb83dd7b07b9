package kommo

// CreateLeadInput é o que o CRM precisa de uma lead nova.
type CreateLeadInput struct {
	LeadID string
	Name   string
	Email  string
	Phone  string
}

type embeddedContacts struct {
	Embedded struct {
		Contacts []struct {
			ID int `json:"id"`
		} `json:"contacts"`
	} `json:"_embedded"`
}

type embeddedLeads struct {
	Embedded struct {
		Leads []struct {
			ID int `json:"id"`
		} `json:"leads"`
	} `json:"_embedded"`
}
