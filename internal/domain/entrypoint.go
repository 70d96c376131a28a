package domain

// EntryPoint represents the application class that boots the service
type EntryPoint struct {
	FilePath   string  `json:"file_path" yaml:"file_path"`
	ClassName  string  `json:"class_name" yaml:"class_name"`
	Annotation string  `json:"annotation" yaml:"annotation"`
	LineNumber uint32  `json:"line_number" yaml:"line_number"`
	Column     uint32  `json:"column" yaml:"column"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
}
