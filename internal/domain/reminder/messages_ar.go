package reminder

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.Arabic

	message.SetString(lang, keyInstallmentDue, `مرحباً {customer_name}،

تذكير بدفع القسط المستحق:

📱 المنتج: {product_name}
💰 المبلغ: {amount} {currency}
📅 تاريخ الاستحقاق: {due_date}
⏰ باقي: {days_left} يوم

يرجى تسديد المبلغ في الموعد المحدد.

شكراً لتعاونكم.`)

	message.SetString(lang, keyDebtOverdue, `مرحباً {customer_name}،

تذكير بدين متأخر السداد:

📝 الوصف: {product_name}
💰 المبلغ: {amount} {currency}
📅 تاريخ الاستحقاق: {due_date}
⏰ متأخر منذ: {days_overdue} يوم

يرجى تسديد المبلغ في أقرب وقت ممكن.

شكراً لتعاونكم.`)
}
