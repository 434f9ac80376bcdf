package constant

const EmailOrgApprovedTemplate = `
Dear %s,

Your organization has been approved. You can now publish events and start selling tickets.

If you have any questions or need assistance, please contact our support team at support@ticket-market.com.

Best regards,
Ticket Market Team

Note: This is an automated message, please do not reply to this email.
`

const EmailOrgRejectedTemplate = `
Dear %s,

We regret to inform you that your organization application has not been approved.

Reason: %s

If you believe this is a mistake, please contact our support team at support@ticket-market.com.

Best regards,
Ticket Market Team

Note: This is an automated message, please do not reply to this email.
`

const EmailOrderCompletedTemplate = `
Dear %s,

Thank you for your purchase! Your order has been completed and your tickets are ready.

Order Details:
------------------------------------------
Order ID: %s
Subtotal: %s
Tax: %s
Total Amount: %s
------------------------------------------

Tickets:
%s
Please show the code of each ticket at the venue entrance.

Best regards,
Ticket Market Team
`
