package engine

// ShouldSync decides whether the catalog has to be fetched. An empty latest
// means the version lookup gave nothing usable, which never skips a sync.
func ShouldSync(previous, latest string, force bool) bool {
	return force || latest == "" || latest != previous
}
