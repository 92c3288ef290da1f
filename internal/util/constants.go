package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal    = "local"
	StorageMinio    = "minio"
	StorageOSS      = "oss"
	StorageSupabase = "supabase"
)

// 文件上传相关常量
const (
	MimeImage = "image/"
	MimeJPEG  = "image/jpeg"
	MimeCSV   = "text/csv; charset=utf-8"
	MimeXLSX  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// 提交来源，对应 survey_submissions_total 的 source 标签
const (
	SourceForm    = "form"
	SourceWebhook = "webhook"
	SourceImport  = "import"
)
