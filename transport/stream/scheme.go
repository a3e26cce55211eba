package stream

// SchemeMap maps application schemes to proxy tunnel schemes.
type SchemeMap map[string]string

// DefaultSchemeMap returns a new map with http→tcp and https→ssl.
func DefaultSchemeMap() SchemeMap {
	return SchemeMap{
		"http":  "tcp",
		"https": "ssl",
	}
}

// Apply returns the mapped scheme, or scheme itself when it is not mapped.
func (m SchemeMap) Apply(scheme string) string {
	if mapped, ok := m[scheme]; ok {
		return mapped
	}
	return scheme
}
