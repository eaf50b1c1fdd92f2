// Package inference calls a language model to turn CRM exports into dashboards
// and meeting transcripts into deal suggestions. It supports Gemini and OpenAI
// structured output, with input size guards, retry on transient failures,
// client-side rate limiting, and structural validation of every response.
package inference
