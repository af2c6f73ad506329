// Classifier provider adapters for the moderation consensus engine.
//
// Each adapter wraps one classification backend behind the
// moderation.ClassifierProvider interface: the OpenAI moderation endpoint,
// a Gemini safety prompt, and a zero-cost local wordlist matcher.
package providers
