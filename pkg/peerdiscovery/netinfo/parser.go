package netinfo

import (
	"bufio"
	"errors"
	"net"
	"strings"

	stringsutil "github.com/projectdiscovery/utils/strings"
	"github.com/tidwall/gjson"
)

// parseIPConfig parses windows ipconfig output. Localized builds label the
// address line differently ("IPv4 Address", "IPv4-Adresse", "IP Address").
//
//	Ethernet adapter Ethernet:
//
//	   Connection-specific DNS Suffix  . : fritz.box
//	   IPv4 Address. . . . . . . . . . . : 192.168.178.98(Preferred)
//	   Subnet Mask . . . . . . . . . . . : 255.255.255.0
func parseIPConfig(output string) []Interface {
	var interfaces []Interface
	var current *Interface

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		raw := scanner.Text()
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		// adapter headers start at column zero and end with a colon
		if raw[0] != ' ' && raw[0] != '\t' {
			if !strings.HasSuffix(line, ":") {
				current = nil
				continue
			}
			interfaces = append(interfaces, Interface{
				Name: strings.TrimSuffix(line, ":"),
				Up:   true,
			})
			current = &interfaces[len(interfaces)-1]
			current.Loopback = stringsutil.ContainsAny(strings.ToLower(current.Name), "loopback")
			continue
		}
		if current == nil {
			continue
		}

		label, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		if stringsutil.ContainsAny(strings.ToLower(value), "media disconnected", "medium getrennt") {
			current.Up = false
			continue
		}
		if !stringsutil.ContainsAny(label, "IPv4", "IP Address", "IP-Adresse") {
			continue
		}
		if ip := leadingIPv4(value); ip != nil {
			current.Addrs = append(current.Addrs, ip)
		}
	}
	return interfaces
}

// parseIfconfig parses BSD/macOS ifconfig output as well as both linux
// net-tools layouts ("inet 10.0.0.2 netmask ..." and "inet addr:10.0.0.2").
//
//	en0: flags=8863<UP,BROADCAST,SMART,RUNNING,SIMPLEX,MULTICAST> mtu 1500
//		inet 192.168.1.10 netmask 0xffffff00 broadcast 192.168.1.255
func parseIfconfig(output string) []Interface {
	var interfaces []Interface
	var current *Interface

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		raw := scanner.Text()
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if raw[0] != ' ' && raw[0] != '\t' {
			fields := strings.Fields(line)
			interfaces = append(interfaces, Interface{
				Name: strings.TrimSuffix(fields[0], ":"),
			})
			current = &interfaces[len(interfaces)-1]

			if start, end := strings.Index(line, "<"), strings.Index(line, ">"); start != -1 && end > start {
				for _, flag := range strings.Split(line[start+1:end], ",") {
					switch flag {
					case "UP":
						current.Up = true
					case "LOOPBACK":
						current.Loopback = true
					}
				}
			}
			if strings.Contains(line, "Local Loopback") {
				current.Loopback = true
			}
			continue
		}
		if current == nil {
			continue
		}

		fields := strings.Fields(line)
		switch {
		case fields[0] == "inet" && len(fields) > 1:
			if ip := leadingIPv4(strings.TrimPrefix(fields[1], "addr:")); ip != nil {
				current.Addrs = append(current.Addrs, ip)
			}
		case fields[0] == "UP":
			// legacy net-tools prints the flags on their own line
			current.Up = true
		}
	}
	return interfaces
}

// parseIPAddrJSON parses `ip -j -4 addr show`
func parseIPAddrJSON(output []byte) ([]Interface, error) {
	if !gjson.ValidBytes(output) {
		return nil, errors.New("invalid ip addr json output")
	}
	result := gjson.ParseBytes(output)
	if !result.IsArray() {
		return nil, errors.New("unexpected ip addr json output")
	}

	var interfaces []Interface
	result.ForEach(func(_, link gjson.Result) bool {
		iface := Interface{Name: link.Get("ifname").String()}
		link.Get("flags").ForEach(func(_, flag gjson.Result) bool {
			switch flag.String() {
			case "UP":
				iface.Up = true
			case "LOOPBACK":
				iface.Loopback = true
			}
			return true
		})
		link.Get("addr_info").ForEach(func(_, info gjson.Result) bool {
			if info.Get("family").String() != "inet" {
				return true
			}
			if ip := leadingIPv4(info.Get("local").String()); ip != nil {
				iface.Addrs = append(iface.Addrs, ip)
			}
			return true
		})
		interfaces = append(interfaces, iface)
		return true
	})
	return interfaces, nil
}

// leadingIPv4 parses the dotted-decimal address at the start of s, ignoring
// trailing decorations such as "(Preferred)".
func leadingIPv4(s string) net.IP {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && (s[end] == '.' || (s[end] >= '0' && s[end] <= '9')) {
		end++
	}
	ip := net.ParseIP(s[:end])
	if ip == nil {
		return nil
	}
	return ip.To4()
}
