package email

const (
	subjectHotLeadDigestFmt = "%d hot leads for %s"
)
