package mail

import "fmt"

func VerifyEmail(to, name, link string) Message {
	return Message{
		To:      to,
		Subject: "Verify Email Address",
		Body: fmt.Sprintf(
			"Hello %s,\n\nPlease click the link below to verify your email address.\n\n%s\n\nIf you did not create an account, no further action is required.\n",
			name, link,
		),
	}
}

func OrderPlaced(to, name string, orderID uint, total string) Message {
	return Message{
		To:      to,
		Subject: fmt.Sprintf("Order #%d received", orderID),
		Body: fmt.Sprintf(
			"Hello %s,\n\nWe received your order #%d. Total: %s.\nWe will let you know when it ships.\n",
			name, orderID, total,
		),
	}
}

func OrderStatusChanged(to, name string, orderID uint, status string) Message {
	return Message{
		To:      to,
		Subject: fmt.Sprintf("Order #%d is %s", orderID, status),
		Body: fmt.Sprintf(
			"Hello %s,\n\nYour order #%d is now %s.\n",
			name, orderID, status,
		),
	}
}
