package bot

const welcomeReply = `👋 *Welcome to FixoTrip!*

We help travelers with emergencies 24/7.

What's your problem?
• ✈️ Flight cancelled/delayed
• 🧳 Lost luggage
• 🏨 Hotel/Airbnb issue
• 🛂 Visa/immigration problem
• 🏥 Medical emergency
• 🚨 Scam or theft
• ❓ Other travel problem

Just describe your situation and I'll help!

💰 *$19 flat fee - you only pay if we can help*`

const detailsReceivedReply = `✅ *Got it!*

I'm reviewing your case now. A FixoTrip agent will respond within 5 minutes with a solution.

If we can help, I'll send a PayPal link for $19.
If we can't help your situation, no charge.

Hang tight! 🙏`

const moreDetailsReply = `I want to help! Could you tell me more about your travel emergency?

For example:
- What happened?
- Where are you now?
- When did this happen?

The more details you share, the faster I can help.`

const additionalDetailsReply = `Thanks for the additional details!

A FixoTrip agent is reviewing your case and will respond within 5 minutes.`

const paymentInstructionsReply = `💳 *Payment Instructions*

Pay $19 USD via PayPal:
👉 https://www.paypal.com/ncp/payment/K8PSJVA9EJL2J

Once payment is confirmed, I'll send your complete rescue plan with:
• Step-by-step instructions
• Phone numbers to call
• What to say
• Compensation you're entitled to

Reply "PAID" after payment.`

const paymentReminderReply = "I'm still waiting for your payment to proceed.\n\n" +
	paymentInstructionsReply +
	"\n\nOr if you have more details to share, please send them."

const paymentThanksReply = `✅ *Thank you!*

I'm checking your payment now. Once confirmed, I'll send your complete rescue plan within 10 minutes.

If you have any additional details about your situation, feel free to share them now.`

const adminNotificationTemplate = `🆘 *New FixoTrip Case*

From: %s
Category: %s
Message: %s

Reply to this customer in WhatsApp.`
