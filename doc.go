// Package glcache unpacks the GL shader disk cache written by NVIDIA GPU
// drivers.
//
// A cache is a pair of files: an index (.toc) of fixed-size records and a
// blob (.bin) holding the sections those records address. Each section is a
// 36-byte header followed by a payload that is stored raw, run-length
// encoded, or zstd compressed. The decoded payload is an ARB assembly
// archive, an NVuc microcode archive (possibly behind NVVM/NVDA tags), an
// ELF image, or something unrecognized.
//
// The caches live in $HOME/.nv/GLCache on Linux and the BSDs and in
// %LOCALAPPDATA%\NVIDIA\GLCache on Windows, unless the driver is told
// otherwise with __GL_SHADER_DISK_CACHE_PATH. See [DefaultCacheDir].
//
// # Quick Start
//
// Unpack a cache into a directory:
//
//	x := glcache.NewExtractor(glcache.WithManifest(true))
//	report, err := x.ExtractFiles(ctx, "GLCache/abc/def.toc", "out")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(report.Unpacked, "objects unpacked")
//
// For every entry i the extractor writes header{i}.bin (the raw section
// header) and object{i}.{raw,rle,zstd,unknown} (the packed payload). When the
// payload decodes to its declared size it also writes
// object{i}.{arbbin,nvuc,elf,bin}. Index numbers are zero padded to five
// digits.
//
// # Errors
//
// A malformed index, or any entry addressing bytes outside the blob, fails
// the whole run: the addressing itself cannot be trusted. Problems confined
// to one entry, such as a header disagreeing with its index record or a
// payload that does not decode, skip that entry and are reported in
// [EntryResult.Err].
//
// NVuc objects can be split further with the [github.com/meigma/glcache/nvuc]
// package.
package glcache
