// Content-moderation consensus engine for user-generated text.
//
// The engine fans out each piece of content to a set of pluggable external
// classifiers (see the providers sub-package), merges their per-category
// scores, and emits a single approve/reject decision. Decisions are cached
// by a fingerprint of the normalized text so repeated submissions of the
// same content never hit a classifier twice within the TTL window.
//
// The merge policy is deliberately asymmetric: any single provider flagging
// the content, or any single category score crossing its configured
// threshold, rejects it. Missed unsafe content costs more than a false
// positive on a dating platform.
package moderation
