package upstream

// Endpoint paths relative to the base URL.
const (
	categoriesPath = "/category/list/ANDROID/2.0"
	postListPath   = "/post/list/ANDROID/4.1.8"
	postDetailPath = "/post/detail/ANDROID/2.3"
)

// floorHost is sent as the Host header regardless of the configured base URL.
const floorHost = "floor.huluxia.com"

// headerProfile is the fixed header set an endpoint expects.
type headerProfile struct {
	headers map[string]string
	// close disables keep-alive for the request.
	close bool
}

// browserProfile is used for the category list.
var browserProfile = headerProfile{
	headers: map[string]string{
		"Accept":          "application/json, text/json, text/x-json, text/javascript, application/xml, text/xml",
		"User-Agent":      "PHP cURL Request",
		"Connection":      "Keep-Alive",
		"Accept-Encoding": "gzip, deflate",
	},
}

// appProfile mimics the Android app; used for post list and detail.
var appProfile = headerProfile{
	headers: map[string]string{
		"Connection":      "close",
		"Accept-Encoding": "gzip",
		"User-Agent":      "okhttp/3.8.1",
		"Content-Type":    "application/json; charset=utf-8",
	},
	close: true,
}

// Client identification constants. The upstream rejects requests that
// change them.
var (
	postListParams = map[string]string{
		"platform":    "2",
		"gkey":        "000000",
		"app_version": "4.3.0.3",
		"versioncode": "20141494",
		"market_id":   "floor_web",
	}

	postDetailParams = map[string]string{
		"platform":    "2",
		"gkey":        "000000",
		"app_version": "4.0.1.7",
		"versioncode": "300",
		"market_id":   "tool_web",
		"_key":        "",
		"device_code": "[d]c24a6dbd-5823-4c08-a559-19569c07c6fa",
		"doc":         "1",
	}
)
