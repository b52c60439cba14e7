package qrcode

// TargetKind classifies what a scanned code opens
type TargetKind string

const (
	TargetMenu      TargetKind = "MENU"
	TargetCustomURL TargetKind = "CUSTOM_URL"
	TargetFallback  TargetKind = "FALLBACK"
)

// TargetInput carries the operator's choices plus the deployment base URL
type TargetInput struct {
	CustomURL string
	MenuID    string
	BaseURL   string
}

// Target is the resolved destination of a code.
// Ref is the custom URL for CUSTOM_URL, the menu id for MENU and empty for FALLBACK.
type Target struct {
	Kind TargetKind
	Ref  string
	URL  string
}

// ResolveTarget picks the URL a code should open. First match wins:
// custom URL (verbatim), then the menu page under BaseURL, then BaseURL itself.
// Missing both inputs is not an error.
func ResolveTarget(in TargetInput) Target {
	if in.CustomURL != "" {
		return Target{Kind: TargetCustomURL, Ref: in.CustomURL, URL: in.CustomURL}
	}
	if in.MenuID != "" {
		return Target{Kind: TargetMenu, Ref: in.MenuID, URL: in.BaseURL + "/menu/" + in.MenuID}
	}
	return Target{Kind: TargetFallback, URL: in.BaseURL}
}
