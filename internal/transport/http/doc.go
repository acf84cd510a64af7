// Package http implements the HTTP handlers of the depreciation dashboard.
// Handlers stay thin: they parse and validate the request, call the service
// layer and render the result.
//
// # Routes
//
//	POST   /api/uploads                        multipart field "file", .xlsx
//	GET    /api/sessions/{id}/dashboard        every dashboard panel
//	GET    /api/sessions/{id}/search?q=        keyword search on asset type
//	GET    /api/sessions/{id}/groups?by=&value=&top=
//	GET    /api/sessions/{id}/top?by=&top=
//	GET    /api/sessions/{id}/export.{csv,xlsx}
//	GET    /api/sessions/{id}/report?q=        HTML report
//	DELETE /api/sessions/{id}
//	GET    /api/health, /api/health/ready, /api/health/live, /api/version
//	GET    /metrics
//
// # Error Handling
//
// All errors are RFC 7807 problem documents rendered by errors.ErrorHandler.
// A workbook without the required columns answers 422 with the missing
// names in the missing_columns extension:
//
//	{
//	    "type": "/errors/data/missing-columns",
//	    "title": "Missing Required Columns",
//	    "status": 422,
//	    "detail": "missing required column: Nilai_Buku_Bulan_Ini",
//	    "missing_columns": ["Nilai_Buku_Bulan_Ini"]
//	}
//
// Expired or unknown sessions answer 404 with error_code SESSION_NOT_FOUND.
package http
