//go:build linux

package metadata

import (
	"errors"
	"io/fs"
	"os"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

func stat(path string) (Metadata, error) {
	var stx unix.Statx_t
	err := unix.Statx(unix.AT_FDCWD, path, unix.AT_STATX_SYNC_AS_STAT, unix.STATX_BASIC_STATS|unix.STATX_BTIME, &stx)
	// ENOSYS: kernel sin statx. EPERM: statx bloqueado por un filtro seccomp.
	if errors.Is(err, unix.ENOSYS) || errors.Is(err, unix.EPERM) {
		return statFallback(path)
	}
	if err != nil {
		return Metadata{}, &fs.PathError{Op: "statx", Path: path, Err: err}
	}

	created := statxTime(stx.Ctime)
	if stx.Mask&unix.STATX_BTIME != 0 {
		created = statxTime(stx.Btime)
	}

	return Metadata{
		Size:      int64(stx.Size),
		CreatedAt: created,
		ModTime:   statxTime(stx.Mtime),
		DeviceID:  unix.Mkdev(stx.Dev_major, stx.Dev_minor),
		Inode:     stx.Ino,
	}, nil
}

func statxTime(ts unix.StatxTimestamp) time.Time {
	return time.Unix(ts.Sec, int64(ts.Nsec))
}

// statFallback para kernels sin statx (< 4.11) o con statx bloqueado.
func statFallback(path string) (Metadata, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Metadata{}, err
	}
	md := Metadata{
		Size:      info.Size(),
		CreatedAt: info.ModTime(),
		ModTime:   info.ModTime(),
	}
	if sys, ok := info.Sys().(*syscall.Stat_t); ok {
		md.CreatedAt = time.Unix(sys.Ctim.Unix())
		md.DeviceID = uint64(sys.Dev)
		md.Inode = sys.Ino
	}
	return md, nil
}
