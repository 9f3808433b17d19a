// Copyright (c) 2025 askdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
)

// ProviderErrorType represents the category of an AI provider failure.
type ProviderErrorType int

const (
	ProviderErrorUnknown ProviderErrorType = iota
	ProviderErrorNetwork
	ProviderErrorAuth
	ProviderErrorTimeout
	ProviderErrorRateLimit
	ProviderErrorServer
)

// ParseProviderError categorizes an AI provider error message.
func ParseProviderError(errMsg string) ProviderErrorType {
	lower := strings.ToLower(errMsg)

	if strings.Contains(lower, "connection reset") || strings.Contains(lower, "connection refused") ||
		strings.Contains(lower, "no such host") {
		return ProviderErrorNetwork
	}
	if strings.Contains(lower, "status=401") || strings.Contains(lower, "status=403") ||
		strings.Contains(lower, "invalid api key") || strings.Contains(lower, "unauthorized") {
		return ProviderErrorAuth
	}
	if strings.Contains(lower, "deadline") || strings.Contains(lower, "timeout") {
		return ProviderErrorTimeout
	}
	if strings.Contains(lower, "status=429") || strings.Contains(lower, "rate limit") {
		return ProviderErrorRateLimit
	}
	if strings.Contains(lower, "status=5") || strings.Contains(lower, "internal server error") ||
		strings.Contains(lower, "service unavailable") {
		return ProviderErrorServer
	}

	return ProviderErrorUnknown
}

// FormatProviderError formats an AI provider error in a user-friendly way.
func FormatProviderError(errMsg string) string {
	errType := ParseProviderError(errMsg)

	var builder strings.Builder

	builder.WriteString(pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint("AI Request Failed"))
	builder.WriteString("\n\n")

	switch errType {
	case ProviderErrorNetwork:
		builder.WriteString("The connection to the AI provider was interrupted.\n")
		builder.WriteString("This usually happens when:\n")
		builder.WriteString("  • Your internet connection was disrupted\n")
		builder.WriteString("  • The provider endpoint is unreachable\n")
		builder.WriteString("  • A firewall or proxy closed the connection\n")

	case ProviderErrorAuth:
		builder.WriteString("Authentication with the AI provider failed.\n")
		builder.WriteString("To fix this:\n")
		builder.WriteString("  • Run 'askdb key set' to store a valid API key\n")
		builder.WriteString("  • Check that the key has not been revoked\n")

	case ProviderErrorTimeout:
		builder.WriteString("The AI provider took too long to respond.\n")
		builder.WriteString("This could be due to:\n")
		builder.WriteString("  • Slow or unstable internet connection\n")
		builder.WriteString("  • The provider being under heavy load\n")

	case ProviderErrorRateLimit:
		builder.WriteString("The AI provider rejected the request due to rate limiting.\n")
		builder.WriteString("  • Wait a moment and ask again\n")
		builder.WriteString("  • Check your plan's request quota\n")

	case ProviderErrorServer:
		builder.WriteString("The AI provider encountered an internal error.\n")
		builder.WriteString("  • This is not a problem with your setup\n")
		builder.WriteString("  • Please try again in a few minutes\n")

	default:
		builder.WriteString("The AI request could not be completed.\n")
		builder.WriteString("This could mean:\n")
		builder.WriteString("  • Network connection dropped\n")
		builder.WriteString("  • The provider returned an unexpected response\n")
	}

	builder.WriteString("\n")

	if errType == ProviderErrorAuth {
		builder.WriteString(pterm.NewStyle(pterm.FgYellow).Sprint("→ Please run 'askdb key set' and try again"))
	} else {
		builder.WriteString(pterm.NewStyle(pterm.FgYellow).Sprint("→ Please ask your question again"))
	}

	builder.WriteString("\n")

	if strings.TrimSpace(errMsg) != "" {
		builder.WriteString("\n")
		builder.WriteString(pterm.NewStyle(pterm.FgGray).Sprint("Technical details: " + Mask(errMsg)))
	}

	return builder.String()
}

// PresentProviderError displays a formatted AI provider error.
func PresentProviderError(errMsg string) {
	fmt.Println()
	fmt.Println(FormatProviderError(errMsg))
	fmt.Println()
}
