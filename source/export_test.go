package source

// SetMaxDownload lowers the download limit for a test and returns a function
// restoring the previous one.
func SetMaxDownload(n int64) (restore func()) {
	prev := maxDownload
	maxDownload = n
	return func() { maxDownload = prev }
}
