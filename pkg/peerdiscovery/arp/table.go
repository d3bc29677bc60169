package arp

import (
	"bufio"
	"net"
	"strings"
)

// parseLinuxARPTable parses /proc/net/arp
//
//	IP address       HW type     Flags       HW address            Mask     Device
//	192.168.1.1      0x1         0x2         aa:bb:cc:dd:ee:ff     *        eth0
func parseLinuxARPTable(data string) ([]Peer, error) {
	var peers []Peer
	scanner := bufio.NewScanner(strings.NewReader(data))

	// header
	if !scanner.Scan() {
		return peers, nil
	}

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 6 {
			continue
		}

		// flags 0x0 marks an incomplete entry
		if fields[2] == "0x0" {
			continue
		}

		ip := net.ParseIP(fields[0]).To4()
		if ip == nil {
			continue
		}
		mac, err := net.ParseMAC(fields[3])
		if err != nil || isUnresolved(mac) {
			continue
		}

		peers = append(peers, Peer{IP: ip, MAC: mac})
	}

	return peers, scanner.Err()
}

// parseDarwinARPTable parses macOS/BSD `arp -a` output
//
//	? (192.168.1.1) at aa:bb:cc:dd:ee:ff on en0 ifscope [ethernet]
//	? (192.168.1.7) at (incomplete) on en0 ifscope [ethernet]
func parseDarwinARPTable(output string) ([]Peer, error) {
	var peers []Peer
	scanner := bufio.NewScanner(strings.NewReader(output))

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		ipStart := strings.Index(line, "(")
		ipEnd := strings.Index(line, ")")
		if ipStart == -1 || ipEnd == -1 || ipStart >= ipEnd {
			continue
		}
		ip := net.ParseIP(line[ipStart+1 : ipEnd]).To4()
		if ip == nil {
			continue
		}

		_, rest, found := strings.Cut(line[ipEnd:], " at ")
		if !found {
			continue
		}
		fields := strings.Fields(rest)
		if len(fields) == 0 || fields[0] == "(incomplete)" {
			continue
		}

		// macOS drops leading zeros ("0:1c:42:a:b:c")
		mac, err := net.ParseMAC(padMAC(fields[0]))
		if err != nil || isUnresolved(mac) {
			continue
		}

		peers = append(peers, Peer{IP: ip, MAC: mac})
	}

	return peers, scanner.Err()
}

func padMAC(mac string) string {
	parts := strings.Split(mac, ":")
	for i, part := range parts {
		if len(part) == 1 {
			parts[i] = "0" + part
		}
	}
	return strings.Join(parts, ":")
}

// parseWindowsARPTable parses windows `arp -a` output, which has one section per interface
//
//	Interface: 192.168.1.100 --- 0xa
//	  Internet Address      Physical Address      Type
//	  192.168.1.1           aa-bb-cc-dd-ee-ff     dynamic
//	  192.168.1.255         ff-ff-ff-ff-ff-ff     static
func parseWindowsARPTable(output string) ([]Peer, error) {
	var peers []Peer
	scanner := bufio.NewScanner(strings.NewReader(output))

	inARPTable := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "Interface:") {
			inARPTable = false
			continue
		}
		// the column header is localized, the first data row follows it
		if !inARPTable {
			fields := strings.Fields(line)
			if len(fields) >= 3 && net.ParseIP(fields[0]) == nil {
				inARPTable = true
			}
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		// broadcast and multicast entries are static
		if len(fields) >= 3 && fields[2] != "dynamic" && fields[2] != "dynamisch" {
			continue
		}

		ip := net.ParseIP(fields[0]).To4()
		if ip == nil {
			continue
		}
		mac, err := net.ParseMAC(strings.ReplaceAll(fields[1], "-", ":"))
		if err != nil || isUnresolved(mac) {
			continue
		}

		peers = append(peers, Peer{IP: ip, MAC: mac})
	}

	return peers, scanner.Err()
}
