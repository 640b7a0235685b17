// Package archive downloads, verifies and unpacks per-language page archives.
//
// # Security Model
//
// Archives come from a configurable mirror over plain HTTP(S). Nothing is
// unpacked before its SHA-256 digest matches the digest published in the
// mirror's checksum listing, and every entry name is checked so that no file
// can be written outside the destination directory.
//
// # Architecture
//
// The package is organized into three components:
//   - Fetcher: HTTP GET of mirror resources, streaming to a writer while
//     hashing. There is no retry; a failed request is reported once.
//   - Verify: digest comparison (case-insensitive hex).
//   - Extractor: zip extraction through an afero filesystem, keeping only
//     <platform>/<page>.md entries.
//
// # Usage
//
//	f := archive.NewFetcher(archive.FetcherConfig{Mirror: mirror, UserAgent: ua})
//	sum, _, err := f.Download(ctx, "tldr-pages.en.zip", tmp)
//	if err := archive.Verify(sum, expected); err != nil {
//	    return err
//	}
//	pages, err := archive.NewExtractor(fs).Extract(tmp, size, stagingDir)
package archive
