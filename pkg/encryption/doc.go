// Package encryption implements the encrypted value envelope used in
// configuration sources:
//
//	ENC[AES256_GCM,<salt>:<iv>:<tag>:<ciphertext>]
//
// Every segment is standard base64 with padding. The key is derived from a
// passphrase and the 16-byte salt with Argon2id (1 iteration, 64 MiB, 4
// threads, 32-byte key); the cipher is AES-256-GCM with a 12-byte IV and a
// 16-byte authentication tag.
//
// A wrong passphrase or a tampered payload fails with *DecryptionError. A
// value that looks like an envelope but cannot be split or decoded fails
// with *MalformedEnvelopeError.
package encryption
