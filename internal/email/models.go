package email

// InvoiceMail describes a freshly generated invoice to deliver to a client
type InvoiceMail struct {
	ToAddress   string
	ClientName  string
	InvoiceNo   string
	TotalAmount string
	DueDate     string
	// FilePath is the rendered PDF on local disk, attached when readable
	FilePath string
	// PublicURL is where the client can download the PDF
	PublicURL string
	From      string
}

// SendEmailResponse represents the response from sending an email
type SendEmailResponse struct {
	MessageID string
	Success   bool
	Error     string
}
