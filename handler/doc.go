// Package handler provides the HTTP handlers of the IDPay gateway service.
//
// Merchant settings live in SQLite (see infra/config); payment logs are indexed
// in OpenSearch when enabled (see infra/opensearch).
//
// # Handlers
//
//   - PaymentHandler: create and verify payments, and receive the payer's return
//     from the gateway on the callback route
//   - ConfigHandler: store, read and delete a merchant's IDPay settings
//   - LogsHandler: payment logs of an order, recent failures and statistics
//   - HealthHandler: service health
//   - ListErrorCodes, GetErrorCode: the gateway error code table
//
// # Merchants
//
// Every /v1 request acts on behalf of the merchant named in the X-Merchant-ID
// header, or the "default" merchant configured from the environment. Callbacks
// name the merchant in the "merchant" query parameter of the callback URL.
//
// # Errors
//
// A failed gateway call is answered with the response envelope plus errorKind and
// errorCode:
//
//	invalid_config                 500
//	rejected_*                     the gateway's 4xx status, with its body in data
//	timeout                        504
//	transport, server_error        502
//	merchant not configured        404
package handler
