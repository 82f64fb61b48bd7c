// Package builtin provides the functions available inside {{...}} placeholders.
//
// Available functions:
//   - uuid(): Random UUID v4
//   - now(), date(layout): Current UTC time
//   - timestamp(), timestampMs(): Unix time
//   - random(min, max), randomString(length)
//   - base64(value), basicAuth(user, password), urlEncode(value)
package builtin
