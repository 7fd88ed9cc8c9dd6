// Package lang registers the English and Chinese catalogs used for terminal
// output and picks the active language. Log file lines are never translated.
package lang

import (
	"os"
	"strings"
	"sync"

	"github.com/gioco-play/easy-i18n/i18n"
	"github.com/jeandeaual/go-locale"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var registerOnce sync.Once

// translations maps each format string to its English and Chinese rendering.
// Plain sentences translate to themselves in English.
var translations = map[string][2]string{
	"Upload completed!\n":     {"", "上传完成!\n"},
	"  Total uploaded: %s\n":  {"", "  上传总量: %s\n"},
	"  Duration: %s\n":        {"", "  耗时: %s\n"},
	"  Average speed: %s/s\n": {"", "  平均速度: %s/s\n"},
	"\t%s\t%s\t%s\t%s":        {"", "\t%s\t%s\t%s\t%s"},
	"Endpoint":                {"", "服务地址"},
	"Provider":                {"", "存储类型"},
	"Destination":             {"", "目标对象"},
	"Local file":              {"", "本地文件"},
	"Size":                    {"", "大小"},
	"Upload":                  {"", "上传"},
	"Verification":            {"", "校验"},
	"Exit code":               {"", "退出码"},
	"Run":                     {"", "运行"},
	"check the log file":      {"", "请查看日志文件"},
	"Log file: %s\n":          {"", "日志文件: %s\n"},
	"Invalid arguments: %v\n": {"", "参数错误: %v\n"},
	"[AI] Diagnosing the failure with Qwen...\n":                         {"", "[AI] 正在使用通义千问诊断失败原因...\n"},
	"[AI] Diagnosis:\n%s\n":                                              {"", "[AI] 诊断结果:\n%s\n"},
	"[AI] Diagnosis failed: %v\n":                                        {"", "[AI] 诊断失败: %v\n"},
	"[AI] Skipped: no API key (set --ai-api-key or DASHSCOPE_API_KEY)\n": {"", "[AI] 已跳过: 未提供 API Key (请设置 --ai-api-key 或 DASHSCOPE_API_KEY)\n"},
	"AI_DIAG_PROMPT": {
		"You are an object storage expert. The following is the log of a failed file upload to an S3-compatible service. " +
			"Explain the most likely cause in a few sentences and list concrete steps to fix it.",
		"你是对象存储专家。以下是一次向 S3 兼容服务上传文件失败的日志,请简要说明最可能的原因并给出具体的修复步骤。",
	},
	"AI_DIAG_PROMPT_CONNECTION": {
		"You are an object storage expert. The upload below could not reach the S3-compatible endpoint. " +
			"Explain likely network, DNS, TLS or port problems and how to check them.",
		"你是对象存储专家。以下上传无法连接到 S3 兼容服务,请分析可能的网络、DNS、TLS 或端口问题以及排查方法。",
	},
	"AI_DIAG_PROMPT_BUCKET": {
		"You are an object storage expert. The upload below failed because the target bucket does not exist. " +
			"Explain how to verify the bucket name and create it if needed.",
		"你是对象存储专家。以下上传失败是因为目标 bucket 不存在,请说明如何核对 bucket 名称以及如何创建。",
	},
	"AI_DIAG_PROMPT_CLIENT": {
		"You are an object storage expert. The S3 client could not be created or rejected its parameters. " +
			"Check the endpoint format, credentials and bucket name shown in the log.",
		"你是对象存储专家。S3 客户端无法创建或参数被拒绝,请检查日志中的服务地址格式、凭证和 bucket 名称。",
	},
	"AI_DIAG_PROMPT_VERIFY": {
		"You are an object storage expert. The uploaded object's ETag did not match the local MD5. " +
			"Explain possible causes such as multipart uploads, server-side encryption or file changes during upload.",
		"你是对象存储专家。上传对象的 ETag 与本地 MD5 不一致,请分析分片上传、服务端加密或上传期间文件变化等可能原因。",
	},
}

func register() {
	registerOnce.Do(func() {
		for key, t := range translations {
			en := t[0]
			if en == "" {
				en = key
			}
			message.SetString(language.English, key, en)
			message.SetString(language.SimplifiedChinese, key, t[1])
		}
	})
}

// Set selects the language from a --lang value: "zh"/"cn" for Chinese,
// "en" for English, anything else falls back to Detect.
func Set(flag string) language.Tag {
	register()

	var tag language.Tag
	switch strings.ToLower(strings.TrimSpace(flag)) {
	case "zh", "cn":
		tag = language.SimplifiedChinese
	case "en":
		tag = language.English
	default:
		tag = Detect()
	}
	i18n.SetLang(tag)
	return tag
}

// Detect guesses the language from the system locale, then LANG/LC_ALL
func Detect() language.Tag {
	userLocales, _ := locale.GetLocales()
	if len(userLocales) > 0 && strings.HasSuffix(strings.ToUpper(userLocales[0]), "CN") {
		return language.SimplifiedChinese
	}
	if strings.Contains(os.Getenv("LANG"), "zh_CN") || strings.Contains(os.Getenv("LC_ALL"), "zh_CN") {
		return language.SimplifiedChinese
	}
	return language.English
}
