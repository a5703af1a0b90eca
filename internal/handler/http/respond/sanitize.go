package respond

import "regexp"

// Applied in order; the Anthropic pattern must run before the generic sk- one.
var (
	anthropicKeyPattern = regexp.MustCompile(`sk-ant-[a-zA-Z0-9-_]+`)
	openaiKeyPattern    = regexp.MustCompile(`sk-[a-zA-Z0-9]{10,}`)
	awsAccessKeyPattern = regexp.MustCompile(`\b(AKIA|ASIA)[A-Z0-9]{16}\b`)
	dsnPasswordPattern  = regexp.MustCompile(`://([^:/@\s]+):([^@\s]+)@`)
	bearerPattern       = regexp.MustCompile(`(?i)bearer\s+[a-z0-9\-_\.]+`)
)

// SanitizeError masks API keys, access keys, DSN passwords and bearer
// tokens in err's message so it can be logged.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	msg = anthropicKeyPattern.ReplaceAllString(msg, "sk-ant-****")
	msg = openaiKeyPattern.ReplaceAllString(msg, "sk-****")
	msg = awsAccessKeyPattern.ReplaceAllString(msg, "${1}****")
	msg = dsnPasswordPattern.ReplaceAllString(msg, "://$1:****@")
	msg = bearerPattern.ReplaceAllString(msg, "Bearer ****")
	return msg
}
