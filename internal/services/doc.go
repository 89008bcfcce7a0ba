// Package services defines clients for the two HTTP APIs healthart talks to.
//
// # Metrics Provider
//
// [WhoopService] implements [MetricsService]. It issues one bearer-authenticated GET against the
// recovery collection and decodes the newest record into a [models.MetricSnapshot].
//
// # Image Generator
//
// [OpenAIImageService] implements [ImageGenerator] over the OpenAI images API.
// Images come back either inline as base64 or as a URL, which is fetched immediately.
//
// # Error Handling
//
// Services use sentinel errors from the shared package:
//   - [shared.ErrUnauthorized] : provider answered 401 or 403
//   - [shared.ErrNoData] : no scored recovery record available
//   - [shared.ErrTransport] : network failure, unexpected status or malformed body
//   - [shared.ErrArtGenerationFailed] : any image generation failure
//
// Nothing here retries; callers decide.
package services
