package types

// ContactRequest 联系表单.
type ContactRequest struct {
	Name    string `json:"name"    label:"Name"    rule:"notblank,max=100"`
	Email   string `json:"email"   label:"Email"   rule:"notblank,max=255,contactemail"`
	Subject string `json:"subject" label:"Subject" rule:"notblank,max=200"`
	Message string `json:"message" label:"Message" rule:"notblank,max=5000"`
}

// ContactResponse 邮件中继返回的消息编号.
type ContactResponse struct {
	ID string `json:"id"`
}
