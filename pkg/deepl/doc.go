// Package deepl is a minimal DeepL v2 client covering the target language
// list and batch translation. The auth key is sent in the
// "DeepL-Auth-Key" authorization scheme on every request.
package deepl
