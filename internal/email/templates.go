package email

import (
	"fmt"
	"html"
	"time"
)

// SubscriberAlert describes a new newsletter subscription
type SubscriberAlert struct {
	Phone        string
	Source       string
	SubscribedAt time.Time
}

// MaskPhone hides all but the last four digits
func MaskPhone(phone string) string {
	if len(phone) <= 4 {
		return phone
	}
	masked := make([]byte, len(phone))
	for i := range masked {
		if i < len(phone)-4 {
			masked[i] = '*'
		} else {
			masked[i] = phone[i]
		}
	}
	return string(masked)
}

// BuildSubscriberAlertBody builds the HTML body of the subscriber alert
func BuildSubscriberAlertBody(alert SubscriberAlert) string {
	source := alert.Source
	if source == "" {
		source = "website"
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: Georgia, 'Times New Roman', serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<div style="background: linear-gradient(135deg, #b8860b 0%%, #daa520 100%%); padding: 30px; border-radius: 10px 10px 0 0;">
		<h1 style="color: white; margin: 0; font-size: 24px;">New Newsletter Subscriber</h1>
	</div>

	<div style="background: #fff; padding: 30px; border: 1px solid #eee; border-top: none; border-radius: 0 0 10px 10px;">
		<p style="margin-top: 0;">A customer has subscribed to Lastara offers.</p>

		<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
			<tr>
				<td style="padding: 12px; border-bottom: 1px solid #eee; color: #666;">Phone</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; font-family: monospace; font-size: 18px;">%s</td>
			</tr>
			<tr>
				<td style="padding: 12px; border-bottom: 1px solid #eee; color: #666;">Source</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee;">%s</td>
			</tr>
			<tr>
				<td style="padding: 12px; border-bottom: 1px solid #eee; color: #666;">Subscribed at</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee;">%s</td>
			</tr>
		</table>

		<p style="margin-bottom: 0; font-size: 14px; color: #999;">This message was sent automatically by the Lastara storefront.</p>
	</div>
</body>
</html>`,
		html.EscapeString(alert.Phone),
		html.EscapeString(source),
		alert.SubscribedAt.Format("02 Jan 2006 15:04 MST"),
	)
}
