package idpay

import (
	"maps"
	"strings"
)

// ErrorCodeInfo describes a gateway error code. StatusCode is the HTTP status the
// gateway documents for the code; it is informational and never checked.
type ErrorCodeInfo struct {
	StatusCode     int    `json:"statusCode"`
	PersianMessage string `json:"persianMessage"`
}

// Messages keep their placeholders ({ip}, {domain}, {min-amount}, {max-amount}) as published.
var errorCodes = map[string]ErrorCodeInfo{
	"11": {403, "کاربر مسدود شده است."},
	"12": {403, "API Key یافت نشد."},
	"13": {403, "درخواست شما از {ip} ارسال شده است. این IP با IP های ثبت شده در وب سرویس همخوانی ندارد."},
	"14": {403, "وب سرویس شما در حال بررسی است و یا تایید نشده است."},
	"21": {403, "حساب بانکی متصل به وب سرویس تایید نشده است."},
	"22": {404, "وب سریس یافت نشد."},
	"23": {401, "اعتبار سنجی وب سرویس ناموفق بود."},
	"24": {403, "حساب بانکی مرتبط با این وب سرویس غیر فعال شده است."},
	"31": {406, "کد تراکنش id نباید خالی باشد."},
	"32": {406, "شماره سفارش order_id نباید خالی باشد."},
	"33": {406, "مبلغ amount نباید خالی باشد."},
	"34": {406, "مبلغ amount باید بیشتر از {min-amount} ریال باشد."},
	"35": {406, "مبلغ amount باید کمتر از {max-amount} ریال باشد."},
	"36": {406, "مبلغ amount بیشتر از حد مجاز است."},
	"37": {406, "آدرس بازگشت callback نباید خالی باشد."},
	"38": {406, "درخواست شما از آدرس {domain} ارسال شده است. دامنه آدرس بازگشت callback با آدرس ثبت شده در وب سرویس همخوانی ندارد."},
	"41": {406, "فیلتر وضعیت تراکنش ها می بایست آرایه ای (لیستی) از وضعیت های مجاز در مستندات باشد."},
	"42": {406, "فیلتر تاریخ پرداخت می بایست آرایه ای شامل المنت های min و max از نوع timestamp باشد."},
	"43": {406, "فیلتر تاریخ تسویه می بایست آرایه ای شامل المنت های min و max از نوع timestamp باشد."},
	"51": {405, "تراکنش ایجاد نشد."},
	"52": {400, "استعلام نتیجه ای نداشت."},
	"53": {405, "تایید پرداخت امکان پذیر نیست."},
	"54": {405, "مدت زمان تایید پرداخت سپری شده است."},
}

// LookupErrorCode returns the documented entry for a gateway error code
func LookupErrorCode(code string) (ErrorCodeInfo, bool) {
	info, ok := errorCodes[code]
	return info, ok
}

// ErrorCodes returns a copy of the gateway error code table
func ErrorCodes() map[string]ErrorCodeInfo {
	return maps.Clone(errorCodes)
}

// RenderMessage substitutes {name} placeholders of a message with values.
// Unknown placeholders are left as they are.
func RenderMessage(template string, values map[string]string) string {
	if len(values) == 0 {
		return template
	}

	pairs := make([]string, 0, len(values)*2)
	for name, value := range values {
		pairs = append(pairs, "{"+name+"}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
