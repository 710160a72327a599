package logger

// LogRequest logs HTTP request information
func LogRequest(method, url string, statusCode int, durationMs float64) {
	fields := map[string]interface{}{
		"method":      method,
		"url":         url,
		"status_code": statusCode,
		"duration_ms": durationMs,
	}

	if statusCode >= 200 && statusCode < 300 {
		GetLogger().DebugWithFields("HTTP request completed", fields)
	} else if statusCode >= 400 && statusCode < 500 {
		GetLogger().WarnWithFields("HTTP request client error", fields)
	} else if statusCode >= 500 {
		GetLogger().ErrorWithFields("HTTP request server error", fields)
	}
}

// LogUpload logs image upload operations
func LogUpload(sourceURL, remoteName string, success bool, err error) {
	fields := map[string]interface{}{
		"source_url":  sourceURL,
		"remote_name": remoteName,
		"success":     success,
	}

	log := GetLogger().WithFields(fields)

	if err != nil {
		log.WithError(err).Warn("Image upload failed")
	} else {
		log.Info("Image uploaded")
	}
}
