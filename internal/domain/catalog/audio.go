package catalog

import (
	"path"
	"strings"
)

var audioExtensions = map[string]bool{
	".flac": true, ".mp3": true, ".wav": true, ".aiff": true,
	".aif": true, ".ogg": true, ".oga": true, ".m4a": true,
	".aac": true, ".wma": true, ".ape": true, ".wv": true,
	".mpc": true, ".opus": true, ".alac": true,
}

// IsAudioFile checks if a path is an audio file.
func IsAudioFile(filePath string) bool {
	ext := strings.ToLower(path.Ext(filePath))
	return audioExtensions[ext]
}
