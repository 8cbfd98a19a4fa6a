package bot

// User-facing chat texts. Markdown formatted.
const (
	msgWelcome = "👋 *Welcome to File Share Bot!*\n\n" +
		"*How to use:*\n" +
		"• Send me any file (document, video, audio, etc.)\n" +
		"• I'll generate a permanent share link\n" +
		"• Share the link with anyone for instant downloads\n\n" +
		"⚡ *Features:*\n" +
		"• Files up to 4GB supported\n" +
		"• Permanent links\n" +
		"• Easy sharing options"

	msgHelp = "🤖 *File Share Bot Help*\n\n" +
		"*Commands:*\n" +
		"• /start — Start the bot\n" +
		"• /help — Show this message\n" +
		"• /stats — Show statistics\n\n" +
		"*How to share files:*\n" +
		"1. Send me any file\n" +
		"2. I'll create a permanent link\n" +
		"3. Use the buttons to share"

	// msgShareReady takes the file name and formatted size.
	msgShareReady = "✅ *Your Share Link is Ready!*\n\n" +
		"*File:* `%s`\n" +
		"*Size:* `%s`\n\n" +
		"*Choose an option below:*"

	// msgFileCaption takes the file name and formatted size.
	msgFileCaption = "📥 *File Ready for Download*\n\n" +
		"*File:* `%s`\n" +
		"*Size:* `%s`"

	// msgCopyLink takes the share link.
	msgCopyLink = "*Here's your share link:*\n\n`%s`\n\n" +
		"You can select and copy this text to share with others."

	msgInvalidLink = "❌ *Error:* File link is invalid or expired."

	// msgFloodWait takes the number of seconds to wait.
	msgFloodWait = "⚠️ *Rate Limit:* Please wait %d seconds."

	msgSendFailed = "❌ Error sending file. Please try again."

	// msgTooLarge takes the formatted size limit.
	msgTooLarge = "❌ File is too large. Maximum size: %s"

	msgStoreFailed = "❌ Error processing file. Please try again."

	msgNotDocument = "Please upload a file document."

	msgJoinRequired = "📢 *Subscription Required*\n\n" +
		"You need to join our channel to use this bot.\n" +
		"Please join the channel below and then click \"I've Joined\"."
)
