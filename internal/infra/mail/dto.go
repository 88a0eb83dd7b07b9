package mail

type ClientWelcomeData struct {
	Name string
}

type EmailSender struct {
	From   string
	dialer dialer
}
