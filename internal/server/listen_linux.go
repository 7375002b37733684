//go:build linux

package server

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"golang.org/x/sys/unix"
)

// listenCandidate walks socket → setsockopt → bind → listen by hand so the
// backlog is exactly the one requested rather than the kernel's somaxconn.
func listenCandidate(addr net.IPAddr, port, backlog int) (net.Listener, error) {
	family, sa, err := sockaddr(addr, port)
	if err != nil {
		return nil, err
	}
	where := net.JoinHostPort(addr.String(), strconv.Itoa(port))

	fd, err := unix.Socket(family, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, unix.IPPROTO_TCP)
	if err != nil {
		return nil, os.NewSyscallError("socket", err)
	}

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return nil, &ListenError{Op: "setsockopt", Addr: where, Err: os.NewSyscallError("setsockopt", err)}
	}

	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return nil, os.NewSyscallError("bind", err)
	}

	if err := unix.Listen(fd, backlog); err != nil {
		unix.Close(fd)
		return nil, &ListenError{Op: "listen", Addr: where, Err: os.NewSyscallError("listen", err)}
	}

	// FileListener dups the descriptor; f owns the original.
	f := os.NewFile(uintptr(fd), "tcp:"+where)
	defer f.Close()

	ln, err := net.FileListener(f)
	if err != nil {
		return nil, &ListenError{Op: "listen", Addr: where, Err: err}
	}
	return ln, nil
}

func sockaddr(addr net.IPAddr, port int) (int, unix.Sockaddr, error) {
	if ip4 := addr.IP.To4(); ip4 != nil {
		sa := &unix.SockaddrInet4{Port: port}
		copy(sa.Addr[:], ip4)
		return unix.AF_INET, sa, nil
	}

	if ip6 := addr.IP.To16(); ip6 != nil {
		sa := &unix.SockaddrInet6{Port: port}
		copy(sa.Addr[:], ip6)
		if addr.Zone != "" {
			ifi, err := net.InterfaceByName(addr.Zone)
			if err != nil {
				return 0, nil, fmt.Errorf("unknown zone %q: %w", addr.Zone, err)
			}
			sa.ZoneId = uint32(ifi.Index)
		}
		return unix.AF_INET6, sa, nil
	}

	return 0, nil, fmt.Errorf("unexpected length of ip %v", addr.IP)
}
