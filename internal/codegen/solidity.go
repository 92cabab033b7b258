package codegen

import (
	"fmt"
	"strings"

	"guardrail/internal/spec"
)

// SolidityGenerator renders an EVM guardrail contract.
type SolidityGenerator struct{}

func NewSolidityGenerator() *SolidityGenerator { return &SolidityGenerator{} }

func (g *SolidityGenerator) Target() string        { return "evm" }
func (g *SolidityGenerator) FileExtension() string { return "sol" }

// Generate renders the contract source. Blocklist entries are emitted in
// specification order so regeneration diffs stay stable.
func (g *SolidityGenerator) Generate(s *spec.Specification, opts Options) (string, error) {
	p, err := extractSaleParams(s, opts)
	if err != nil {
		return "", err
	}

	name := opts.contractName()
	var b strings.Builder

	b.WriteString("// SPDX-License-Identifier: MIT\n")
	b.WriteString("pragma solidity ^0.8.20;\n\n")
	writeSolidityHeader(&b, p)

	fmt.Fprintf(&b, "contract %s {\n", name)
	b.WriteString("    address public immutable owner;\n")
	if opts.WithOracle {
		b.WriteString("    address public immutable oracle;\n")
	}
	b.WriteString("\n")

	writeSolidityConstants(&b, p, opts)

	b.WriteString("    uint256 public totalRaisedUsd;\n")
	b.WriteString("    mapping(address => uint256) public contributedUsd;\n")
	if len(p.Blocklist) > 0 {
		b.WriteString("    mapping(string => bool) public blockedJurisdiction;\n")
	}
	if len(p.Whitelist) > 0 {
		b.WriteString("    mapping(string => bool) public allowedJurisdiction;\n")
	}
	if p.HasLockup {
		b.WriteString("    mapping(address => uint256) public lockupEndsAt;\n")
	}
	if opts.WithOracle {
		b.WriteString("\n")
		b.WriteString("    enum VerificationStatus { None, Pending, InProgress, Approved, Rejected, NeedsReview }\n")
		b.WriteString("    mapping(address => VerificationStatus) public verificationStatus;\n")
	}
	b.WriteString("\n")
	b.WriteString("    event Contribution(address indexed participant, uint256 amountUsd);\n")
	if opts.WithOracle {
		b.WriteString("    event VerificationUpdated(address indexed participant, VerificationStatus status);\n")
	}
	b.WriteString("\n")

	writeSolidityConstructor(&b, p, opts)
	writeSolidityViews(&b, p, opts)
	writeSolidityContribute(&b, p)
	if opts.WithOracle {
		writeSolidityOracle(&b)
	}

	b.WriteString("}\n")
	return b.String(), nil
}

func writeSolidityHeader(b *strings.Builder, p *saleParams) {
	b.WriteString("// Compliance guardrail generated from a declarative specification.\n")
	if p.ProjectName != "" {
		fmt.Fprintf(b, "// Project: %s\n", p.ProjectName)
	}
	if p.Jurisdiction != "" {
		if p.Framework != "" {
			fmt.Fprintf(b, "// Jurisdiction: %s (%s)\n", p.Jurisdiction, p.Framework)
		} else {
			fmt.Fprintf(b, "// Jurisdiction: %s\n", p.Jurisdiction)
		}
	}
	b.WriteString("// Regenerate from the specification instead of editing by hand.\n")
}

func writeSolidityConstants(b *strings.Builder, p *saleParams, opts Options) {
	startNote := fmt.Sprintf("// %s", p.StartLabel)
	if p.StartDefaulted {
		startNote += " (default: no start_date in specification)"
	}
	endNote := fmt.Sprintf("// %s", p.EndLabel)
	if p.EndDefaulted {
		endNote += " (default: no end_date in specification)"
	}
	fmt.Fprintf(b, "    uint256 public constant SALE_START = %d; %s\n", p.StartUnix, startNote)
	fmt.Fprintf(b, "    uint256 public constant SALE_END = %d; %s\n", p.EndUnix, endNote)

	capNote := ""
	if p.CapDefaulted {
		capNote = " // default: no max_cap_usd in specification, 0 means unlimited"
	}
	fmt.Fprintf(b, "    uint256 public constant MAX_CAP_USD = %d;%s\n", p.Cap, capNote)

	kycNote := ""
	if p.KYCDefaulted {
		kycNote = " // default: no kyc_threshold_usd in specification, 0 disables the gate"
	}
	fmt.Fprintf(b, "    uint256 public constant KYC_THRESHOLD_USD = %d;%s\n", p.KYCThreshold, kycNote)

	if p.HasMin {
		fmt.Fprintf(b, "    uint256 public constant MIN_INVESTMENT_USD = %d;\n", p.MinInvestment)
	}
	if p.HasMax {
		fmt.Fprintf(b, "    uint256 public constant MAX_INVESTMENT_USD = %d;\n", p.MaxInvestment)
	}
	if p.HasLockup {
		fmt.Fprintf(b, "    uint256 public constant LOCKUP_DAYS = %d;\n", p.LockupDays)
	}
	b.WriteString("\n")
}

func writeSolidityConstructor(b *strings.Builder, p *saleParams, opts Options) {
	if opts.WithOracle {
		b.WriteString("    constructor(address oracle_) {\n")
		b.WriteString("        owner = msg.sender;\n")
		b.WriteString("        oracle = oracle_;\n")
	} else {
		b.WriteString("    constructor() {\n")
		b.WriteString("        owner = msg.sender;\n")
	}
	for _, code := range p.Blocklist {
		fmt.Fprintf(b, "        blockedJurisdiction[%q] = true;\n", code)
	}
	for _, code := range p.Whitelist {
		fmt.Fprintf(b, "        allowedJurisdiction[%q] = true;\n", code)
	}
	b.WriteString("    }\n\n")
}

func writeSolidityViews(b *strings.Builder, p *saleParams, opts Options) {
	b.WriteString("    function saleActive() public view returns (bool) {\n")
	b.WriteString("        return block.timestamp >= SALE_START && block.timestamp <= SALE_END;\n")
	b.WriteString("    }\n\n")

	// Boolean-plus-reason, never reverting: callers decide whether a
	// refused contribution is a revert or a soft rejection.
	b.WriteString("    function validateContribution(address participant, uint256 amountUsd, string memory jurisdiction)\n")
	b.WriteString("        public\n")
	b.WriteString("        view\n")
	b.WriteString("        returns (bool ok, string memory reason)\n")
	b.WriteString("    {\n")
	b.WriteString("        if (!saleActive()) {\n")
	b.WriteString("            return (false, \"sale is not active\");\n")
	b.WriteString("        }\n")
	if len(p.Blocklist) > 0 {
		b.WriteString("        if (blockedJurisdiction[jurisdiction]) {\n")
		b.WriteString("            return (false, \"jurisdiction is blocked\");\n")
		b.WriteString("        }\n")
	}
	if len(p.Whitelist) > 0 {
		b.WriteString("        if (!allowedJurisdiction[jurisdiction]) {\n")
		b.WriteString("            return (false, \"jurisdiction is not allowlisted\");\n")
		b.WriteString("        }\n")
	}
	if p.HasMin {
		b.WriteString("        if (amountUsd < MIN_INVESTMENT_USD) {\n")
		b.WriteString("            return (false, \"below minimum investment\");\n")
		b.WriteString("        }\n")
	}
	if p.HasMax {
		b.WriteString("        if (contributedUsd[participant] + amountUsd > MAX_INVESTMENT_USD) {\n")
		b.WriteString("            return (false, \"exceeds per-participant maximum\");\n")
		b.WriteString("        }\n")
	}
	// The cap is refused once reached: strictly greater than.
	b.WriteString("        if (MAX_CAP_USD > 0 && totalRaisedUsd + amountUsd > MAX_CAP_USD) {\n")
	b.WriteString("            return (false, \"sale cap exceeded\");\n")
	b.WriteString("        }\n")
	if opts.WithOracle {
		b.WriteString("        if (KYC_THRESHOLD_USD > 0 && contributedUsd[participant] + amountUsd >= KYC_THRESHOLD_USD\n")
		b.WriteString("            && verificationStatus[participant] != VerificationStatus.Approved) {\n")
		b.WriteString("            return (false, \"KYC verification required\");\n")
		b.WriteString("        }\n")
	}
	b.WriteString("        return (true, \"\");\n")
	b.WriteString("    }\n\n")
}

func writeSolidityContribute(b *strings.Builder, p *saleParams) {
	b.WriteString("    function contribute(uint256 amountUsd, string calldata jurisdiction) external {\n")
	b.WriteString("        (bool ok, string memory reason) = validateContribution(msg.sender, amountUsd, jurisdiction);\n")
	b.WriteString("        require(ok, reason);\n")
	b.WriteString("        contributedUsd[msg.sender] += amountUsd;\n")
	b.WriteString("        totalRaisedUsd += amountUsd;\n")
	if p.HasLockup {
		b.WriteString("        lockupEndsAt[msg.sender] = block.timestamp + LOCKUP_DAYS * 1 days;\n")
	}
	b.WriteString("        emit Contribution(msg.sender, amountUsd);\n")
	b.WriteString("    }\n")
}

func writeSolidityOracle(b *strings.Builder) {
	b.WriteString("\n")
	b.WriteString("    // Only the designated oracle identity may write verification state.\n")
	b.WriteString("    function setVerificationStatus(address participant, VerificationStatus status) external {\n")
	b.WriteString("        require(msg.sender == oracle, \"caller is not the oracle\");\n")
	b.WriteString("        verificationStatus[participant] = status;\n")
	b.WriteString("        emit VerificationUpdated(participant, status);\n")
	b.WriteString("    }\n")
}
