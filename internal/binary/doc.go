// Package binary downloads, verifies, and unpacks vendor release archives
// that carry a single executable.
//
// # Download
//
// Downloader performs a GET that follows redirects and fails on any non-200
// status, so an HTTP error page is never saved as an archive. Transport
// errors and 5xx responses are retried with exponential backoff; 4xx
// responses are not. Data is written to "<dest>.tmp" and renamed into place.
//
// # Verification
//
// Verification is opt-in. When an Expectation carries a SHA256 digest the
// archive must match it; when it carries a detached signature and a keyring
// the signature is checked with OpenPGP (armored, then binary).
//
// # Extraction
//
// Extractors pull exactly one named entry out of a .tgz:
//   - TarExtractor runs "tar -xzf <archive> -C <dir> <entry>" through a runner.Runner
//   - BuiltinExtractor reads the gzip/tar stream in-process
//
// # Usage
//
//	url, err := binary.DownloadURL(binary.DefaultURLTemplate, "1.2.0", platform.ArchARM64)
//	if err != nil {
//	    return err
//	}
//
//	d := binary.NewDownloader(binary.DownloaderConfig{})
//	if err := d.DownloadToFile(ctx, url, archivePath); err != nil {
//	    return err
//	}
//
//	x, _ := binary.NewExtractor(binary.ExtractorTar, &runner.SystemRunner{})
//	err = x.ExtractEntry(ctx, archivePath, "speedtest", binDir)
package binary
