package reminder

import "golang.org/x/text/message"

func init() {
	lang := kurdishTag

	message.SetString(lang, keyInstallmentDue, `سڵاو {customer_name}،

بیرهێنانەوەی پارەدان بۆ قیست:

📱 بەرهەم: {product_name}
💰 بڕ: {amount} {currency}
📅 ڕێکەوتی دەستپێکردن: {due_date}
⏰ ماوە: {days_left} ڕۆژ

تکایە پارەکە لە کاتی دیاریکراو بدە.

سوپاس بۆ هاوکاریتان.`)

	message.SetString(lang, keyDebtOverdue, `سڵاو {customer_name}،

بیرهێنانەوەی قەرزی دواکەوتوو:

📝 وەسف: {product_name}
💰 بڕ: {amount} {currency}
📅 ڕێکەوتی دەستپێکردن: {due_date}
⏰ دواکەوتوو: {days_overdue} ڕۆژ

تکایە پارەکە لە زووترین کاتدا بدە.

سوپاس بۆ هاوکاریتان.`)
}
