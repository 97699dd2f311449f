// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// algorithms.go - Algorithm tables for the default and legacy modules.
//
// FIPS 140-3 Approved (visible in compliance mode):
//   - SHA-1, SHA-2 and SHA-3 digests
//   - AES in CBC, CTR and GCM modes
//
// Everything else is available only outside compliance mode. Deprecated
// algorithms live in the legacy module, mirroring the OpenSSL 3 split.

package provider

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/des"
	"crypto/md5"
	"crypto/rc4"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha3"
	"crypto/sha512"
	"hash"
	"strconv"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/blake2s"
	"golang.org/x/crypto/blowfish"
	"golang.org/x/crypto/cast5"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/md4"
	"golang.org/x/crypto/ripemd160"
)

// =============================================================================
// DEFINITIONS
// =============================================================================

// Module names.
const (
	ModuleDefault = "default"
	ModuleLegacy  = "legacy"
)

// digestDef describes a digest a module can instantiate.
type digestDef struct {
	name     string
	aliases  []string
	approved bool
	new      func() (hash.Hash, error)
}

// cipherMode selects the session engine for a cipher.
type cipherMode int

const (
	modeCBC cipherMode = iota
	modeStream
	modeAEAD
)

// cipherDef describes a cipher a module can instantiate.
type cipherDef struct {
	name     string
	aliases  []string
	approved bool
	mode     cipherMode
	keySize  int
	ivSize   int

	// Exactly one constructor is set, matching mode.
	newBlock  func(key []byte) (cipher.Block, error)
	newStream func(key, iv []byte) (cipher.Stream, error)
	newAEAD   func(key []byte) (cipher.AEAD, error)
}

// moduleDef is a named, loadable set of algorithms.
type moduleDef struct {
	name     string
	approved bool
	digests  []digestDef
	ciphers  []cipherDef
}

func plain(f func() hash.Hash) func() (hash.Hash, error) {
	return func() (hash.Hash, error) { return f(), nil }
}

func sha3Of(f func() *sha3.SHA3) func() (hash.Hash, error) {
	return func() (hash.Hash, error) { return f(), nil }
}

func aesCBC(bits int) cipherDef {
	return cipherDef{
		name:     aesName(bits, "CBC"),
		approved: true,
		mode:     modeCBC,
		keySize:  bits / 8,
		ivSize:   aes.BlockSize,
		newBlock: aes.NewCipher,
	}
}

func aesCTR(bits int) cipherDef {
	return cipherDef{
		name:     aesName(bits, "CTR"),
		approved: true,
		mode:     modeStream,
		keySize:  bits / 8,
		ivSize:   aes.BlockSize,
		newStream: func(key, iv []byte) (cipher.Stream, error) {
			block, err := aes.NewCipher(key)
			if err != nil {
				return nil, err
			}
			return cipher.NewCTR(block, iv), nil
		},
	}
}

func aesGCM(bits int) cipherDef {
	return cipherDef{
		name:     aesName(bits, "GCM"),
		aliases:  []string{"id-aes" + strconv.Itoa(bits) + "-GCM"},
		approved: true,
		mode:     modeAEAD,
		keySize:  bits / 8,
		ivSize:   12,
		newAEAD: func(key []byte) (cipher.AEAD, error) {
			block, err := aes.NewCipher(key)
			if err != nil {
				return nil, err
			}
			return cipher.NewGCM(block)
		},
	}
}

func aesName(bits int, mode string) string {
	return "AES-" + strconv.Itoa(bits) + "-" + mode
}

// =============================================================================
// DEFAULT MODULE
// =============================================================================

func defaultModule() moduleDef {
	return moduleDef{
		name:     ModuleDefault,
		approved: true,
		digests: []digestDef{
			{name: "SHA1", aliases: []string{"SHA-1", "SSL3-SHA1"}, approved: true, new: plain(sha1.New)},
			{name: "SHA2-224", aliases: []string{"SHA-224", "SHA224"}, approved: true, new: plain(sha256.New224)},
			{name: "SHA2-256", aliases: []string{"SHA-256", "SHA256"}, approved: true, new: plain(sha256.New)},
			{name: "SHA2-384", aliases: []string{"SHA-384", "SHA384"}, approved: true, new: plain(sha512.New384)},
			{name: "SHA2-512", aliases: []string{"SHA-512", "SHA512"}, approved: true, new: plain(sha512.New)},
			{name: "SHA2-512/224", aliases: []string{"SHA-512/224", "SHA512-224"}, approved: true, new: plain(sha512.New512_224)},
			{name: "SHA2-512/256", aliases: []string{"SHA-512/256", "SHA512-256"}, approved: true, new: plain(sha512.New512_256)},
			{name: "SHA3-224", approved: true, new: sha3Of(sha3.New224)},
			{name: "SHA3-256", approved: true, new: sha3Of(sha3.New256)},
			{name: "SHA3-384", approved: true, new: sha3Of(sha3.New384)},
			{name: "SHA3-512", approved: true, new: sha3Of(sha3.New512)},
			{name: "MD5", aliases: []string{"SSL3-MD5"}, new: plain(md5.New)},
			{name: "BLAKE2B-512", aliases: []string{"BLAKE2b512"}, new: func() (hash.Hash, error) { return blake2b.New512(nil) }},
			{name: "BLAKE2S-256", aliases: []string{"BLAKE2s256"}, new: func() (hash.Hash, error) { return blake2s.New256(nil) }},
		},
		ciphers: []cipherDef{
			aesCBC(128), aesCBC(192), aesCBC(256),
			aesCTR(128), aesCTR(192), aesCTR(256),
			aesGCM(128), aesGCM(192), aesGCM(256),
			{
				name:    "ChaCha20-Poly1305",
				mode:    modeAEAD,
				keySize: chacha20poly1305.KeySize,
				ivSize:  chacha20poly1305.NonceSize,
				newAEAD: chacha20poly1305.New,
			},
			{
				name:     "DES-EDE3-CBC",
				aliases:  []string{"DES3"},
				mode:     modeCBC,
				keySize:  24,
				ivSize:   des.BlockSize,
				newBlock: des.NewTripleDESCipher,
			},
		},
	}
}

// =============================================================================
// LEGACY MODULE
// =============================================================================

func legacyModule() moduleDef {
	return moduleDef{
		name: ModuleLegacy,
		digests: []digestDef{
			{name: "MD4", new: plain(md4.New)},
			{name: "RIPEMD-160", aliases: []string{"RIPEMD160", "RMD160"}, new: plain(ripemd160.New)},
		},
		ciphers: []cipherDef{
			{
				name:     "DES-CBC",
				aliases:  []string{"DES"},
				mode:     modeCBC,
				keySize:  8,
				ivSize:   des.BlockSize,
				newBlock: des.NewCipher,
			},
			{
				name:    "BF-CBC",
				aliases: []string{"BF", "Blowfish"},
				mode:    modeCBC,
				keySize: 16,
				ivSize:  blowfish.BlockSize,
				newBlock: func(key []byte) (cipher.Block, error) {
					return blowfish.NewCipher(key)
				},
			},
			{
				name:    "CAST5-CBC",
				aliases: []string{"CAST", "CAST-CBC"},
				mode:    modeCBC,
				keySize: cast5.KeySize,
				ivSize:  cast5.BlockSize,
				newBlock: func(key []byte) (cipher.Block, error) {
					return cast5.NewCipher(key)
				},
			},
			{
				name:    "RC4",
				mode:    modeStream,
				keySize: 16,
				newStream: func(key, _ []byte) (cipher.Stream, error) {
					return rc4.NewCipher(key)
				},
			},
		},
	}
}

// builtinModules returns every module this library knows how to load.
func builtinModules() []moduleDef {
	return []moduleDef{defaultModule(), legacyModule()}
}
