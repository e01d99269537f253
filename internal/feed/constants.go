package feed

const (
	DefaultEndpointsURL = "https://endpoints.office.com"

	versionPath   = "version"
	endpointsPath = "endpoints"
	clientIDParam = "ClientRequestId"
)
