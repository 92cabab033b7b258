package codegen

import (
	"fmt"
	"strings"

	"guardrail/internal/spec"
)

// AnchorGenerator renders a Solana guardrail program in Anchor-style
// Rust. Same shared front end as the EVM generator; only the rendering
// differs.
type AnchorGenerator struct{}

func NewAnchorGenerator() *AnchorGenerator { return &AnchorGenerator{} }

func (g *AnchorGenerator) Target() string        { return "solana" }
func (g *AnchorGenerator) FileExtension() string { return "rs" }

func (g *AnchorGenerator) Generate(s *spec.Specification, opts Options) (string, error) {
	p, err := extractSaleParams(s, opts)
	if err != nil {
		return "", err
	}

	name := opts.contractName()
	modName := strings.ToLower(name)
	var b strings.Builder

	b.WriteString("// Compliance guardrail generated from a declarative specification.\n")
	if p.ProjectName != "" {
		fmt.Fprintf(&b, "// Project: %s\n", p.ProjectName)
	}
	if p.Jurisdiction != "" {
		if p.Framework != "" {
			fmt.Fprintf(&b, "// Jurisdiction: %s (%s)\n", p.Jurisdiction, p.Framework)
		} else {
			fmt.Fprintf(&b, "// Jurisdiction: %s\n", p.Jurisdiction)
		}
	}
	b.WriteString("// Regenerate from the specification instead of editing by hand.\n\n")
	b.WriteString("use anchor_lang::prelude::*;\n\n")
	b.WriteString("declare_id!(\"Guard1111111111111111111111111111111111111\");\n\n")

	writeAnchorConstants(&b, p, opts)

	fmt.Fprintf(&b, "#[program]\npub mod %s {\n", modName)
	b.WriteString("    use super::*;\n\n")
	writeAnchorInitialize(&b, opts)
	writeAnchorContribute(&b, p, opts)
	if opts.WithOracle {
		writeAnchorOracle(&b)
	}
	b.WriteString("}\n\n")

	writeAnchorValidate(&b, p, opts)
	writeAnchorAccounts(&b, p, opts)
	writeAnchorErrors(&b)
	return b.String(), nil
}

func writeAnchorConstants(b *strings.Builder, p *saleParams, opts Options) {
	startNote := "// " + p.StartLabel
	if p.StartDefaulted {
		startNote += " (default: no start_date in specification)"
	}
	endNote := "// " + p.EndLabel
	if p.EndDefaulted {
		endNote += " (default: no end_date in specification)"
	}
	fmt.Fprintf(b, "pub const SALE_START: i64 = %d; %s\n", p.StartUnix, startNote)
	fmt.Fprintf(b, "pub const SALE_END: i64 = %d; %s\n", p.EndUnix, endNote)

	capNote := ""
	if p.CapDefaulted {
		capNote = " // default: no max_cap_usd in specification, 0 means unlimited"
	}
	fmt.Fprintf(b, "pub const MAX_CAP_USD: u64 = %d;%s\n", p.Cap, capNote)

	kycNote := ""
	if p.KYCDefaulted {
		kycNote = " // default: no kyc_threshold_usd in specification, 0 disables the gate"
	}
	fmt.Fprintf(b, "pub const KYC_THRESHOLD_USD: u64 = %d;%s\n", p.KYCThreshold, kycNote)

	if p.HasMin {
		fmt.Fprintf(b, "pub const MIN_INVESTMENT_USD: u64 = %d;\n", p.MinInvestment)
	}
	if p.HasMax {
		fmt.Fprintf(b, "pub const MAX_INVESTMENT_USD: u64 = %d;\n", p.MaxInvestment)
	}
	if p.HasLockup {
		fmt.Fprintf(b, "pub const LOCKUP_SECONDS: i64 = %d;\n", int64(p.LockupDays)*86400)
	}

	if len(p.Blocklist) > 0 {
		fmt.Fprintf(b, "pub const BLOCKLIST: [&str; %d] = [", len(p.Blocklist))
		for i, code := range p.Blocklist {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(b, "%q", code)
		}
		b.WriteString("];\n")
	}
	if len(p.Whitelist) > 0 {
		fmt.Fprintf(b, "pub const WHITELIST: [&str; %d] = [", len(p.Whitelist))
		for i, code := range p.Whitelist {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(b, "%q", code)
		}
		b.WriteString("];\n")
	}
	b.WriteString("\n")
}

func writeAnchorInitialize(b *strings.Builder, opts Options) {
	b.WriteString("    pub fn initialize(ctx: Context<Initialize>) -> Result<()> {\n")
	b.WriteString("        let state = &mut ctx.accounts.state;\n")
	b.WriteString("        state.authority = ctx.accounts.authority.key();\n")
	if opts.WithOracle {
		b.WriteString("        state.oracle = ctx.accounts.oracle.key();\n")
	}
	b.WriteString("        state.total_raised_usd = 0;\n")
	b.WriteString("        Ok(())\n")
	b.WriteString("    }\n\n")
}

func writeAnchorContribute(b *strings.Builder, p *saleParams, opts Options) {
	b.WriteString("    pub fn contribute(ctx: Context<Contribute>, amount_usd: u64, jurisdiction: String) -> Result<()> {\n")
	b.WriteString("        let state = &mut ctx.accounts.state;\n")
	b.WriteString("        let participant = &mut ctx.accounts.participant;\n")
	b.WriteString("        let now = Clock::get()?.unix_timestamp;\n")
	b.WriteString("        let verdict = validate_contribution(state, participant, amount_usd, &jurisdiction, now);\n")
	b.WriteString("        require!(verdict.ok, GuardrailError::ContributionRefused);\n")
	b.WriteString("        participant.contributed_usd = participant.contributed_usd.checked_add(amount_usd).unwrap();\n")
	b.WriteString("        state.total_raised_usd = state.total_raised_usd.checked_add(amount_usd).unwrap();\n")
	if p.HasLockup {
		b.WriteString("        participant.lockup_ends_at = now + LOCKUP_SECONDS;\n")
	}
	b.WriteString("        Ok(())\n")
	b.WriteString("    }\n")
}

func writeAnchorOracle(b *strings.Builder) {
	b.WriteString("\n")
	b.WriteString("    // Only the designated oracle identity may write verification state.\n")
	b.WriteString("    pub fn set_verification_status(ctx: Context<SetVerificationStatus>, status: VerificationStatus) -> Result<()> {\n")
	b.WriteString("        require_keys_eq!(\n")
	b.WriteString("            ctx.accounts.oracle.key(),\n")
	b.WriteString("            ctx.accounts.state.oracle,\n")
	b.WriteString("            GuardrailError::NotOracle\n")
	b.WriteString("        );\n")
	b.WriteString("        ctx.accounts.participant.verification_status = status;\n")
	b.WriteString("        Ok(())\n")
	b.WriteString("    }\n")
}

func writeAnchorValidate(b *strings.Builder, p *saleParams, opts Options) {
	b.WriteString("pub struct Verdict {\n")
	b.WriteString("    pub ok: bool,\n")
	b.WriteString("    pub reason: &'static str,\n")
	b.WriteString("}\n\n")

	// Verdict-returning validation mirrors the EVM generator: callers
	// decide whether a refusal becomes a program error.
	b.WriteString("pub fn validate_contribution(state: &SaleState, participant: &Participant, amount_usd: u64, jurisdiction: &str, now: i64) -> Verdict {\n")
	b.WriteString("    if now < SALE_START || now > SALE_END {\n")
	b.WriteString("        return Verdict { ok: false, reason: \"sale is not active\" };\n")
	b.WriteString("    }\n")
	if len(p.Blocklist) > 0 {
		b.WriteString("    if BLOCKLIST.contains(&jurisdiction) {\n")
		b.WriteString("        return Verdict { ok: false, reason: \"jurisdiction is blocked\" };\n")
		b.WriteString("    }\n")
	}
	if len(p.Whitelist) > 0 {
		b.WriteString("    if !WHITELIST.contains(&jurisdiction) {\n")
		b.WriteString("        return Verdict { ok: false, reason: \"jurisdiction is not allowlisted\" };\n")
		b.WriteString("    }\n")
	}
	if p.HasMin {
		b.WriteString("    if amount_usd < MIN_INVESTMENT_USD {\n")
		b.WriteString("        return Verdict { ok: false, reason: \"below minimum investment\" };\n")
		b.WriteString("    }\n")
	}
	if p.HasMax {
		b.WriteString("    if participant.contributed_usd + amount_usd > MAX_INVESTMENT_USD {\n")
		b.WriteString("        return Verdict { ok: false, reason: \"exceeds per-participant maximum\" };\n")
		b.WriteString("    }\n")
	}
	// The cap is refused once reached: strictly greater than.
	b.WriteString("    if MAX_CAP_USD > 0 && state.total_raised_usd + amount_usd > MAX_CAP_USD {\n")
	b.WriteString("        return Verdict { ok: false, reason: \"sale cap exceeded\" };\n")
	b.WriteString("    }\n")
	if opts.WithOracle {
		b.WriteString("    if KYC_THRESHOLD_USD > 0 && participant.contributed_usd + amount_usd >= KYC_THRESHOLD_USD\n")
		b.WriteString("        && participant.verification_status != VerificationStatus::Approved {\n")
		b.WriteString("        return Verdict { ok: false, reason: \"KYC verification required\" };\n")
		b.WriteString("    }\n")
	}
	b.WriteString("    Verdict { ok: true, reason: \"\" }\n")
	b.WriteString("}\n\n")
}

func writeAnchorAccounts(b *strings.Builder, p *saleParams, opts Options) {
	if opts.WithOracle {
		b.WriteString("#[derive(AnchorSerialize, AnchorDeserialize, Clone, Copy, PartialEq, Eq)]\n")
		b.WriteString("pub enum VerificationStatus {\n")
		b.WriteString("    None,\n    Pending,\n    InProgress,\n    Approved,\n    Rejected,\n    NeedsReview,\n")
		b.WriteString("}\n\n")
	}

	b.WriteString("#[account]\npub struct SaleState {\n")
	b.WriteString("    pub authority: Pubkey,\n")
	if opts.WithOracle {
		b.WriteString("    pub oracle: Pubkey,\n")
	}
	b.WriteString("    pub total_raised_usd: u64,\n")
	b.WriteString("}\n\n")

	b.WriteString("#[account]\npub struct Participant {\n")
	b.WriteString("    pub contributed_usd: u64,\n")
	if p.HasLockup {
		b.WriteString("    pub lockup_ends_at: i64,\n")
	}
	if opts.WithOracle {
		b.WriteString("    pub verification_status: VerificationStatus,\n")
	}
	b.WriteString("}\n\n")

	b.WriteString("#[derive(Accounts)]\npub struct Initialize<'info> {\n")
	b.WriteString("    #[account(init, payer = authority, space = 8 + 128)]\n")
	b.WriteString("    pub state: Account<'info, SaleState>,\n")
	b.WriteString("    #[account(mut)]\n")
	b.WriteString("    pub authority: Signer<'info>,\n")
	if opts.WithOracle {
		b.WriteString("    /// CHECK: recorded as the sole verification writer\n")
		b.WriteString("    pub oracle: UncheckedAccount<'info>,\n")
	}
	b.WriteString("    pub system_program: Program<'info, System>,\n")
	b.WriteString("}\n\n")

	b.WriteString("#[derive(Accounts)]\npub struct Contribute<'info> {\n")
	b.WriteString("    #[account(mut)]\n")
	b.WriteString("    pub state: Account<'info, SaleState>,\n")
	b.WriteString("    #[account(mut)]\n")
	b.WriteString("    pub participant: Account<'info, Participant>,\n")
	b.WriteString("    pub contributor: Signer<'info>,\n")
	b.WriteString("}\n\n")

	if opts.WithOracle {
		b.WriteString("#[derive(Accounts)]\npub struct SetVerificationStatus<'info> {\n")
		b.WriteString("    pub state: Account<'info, SaleState>,\n")
		b.WriteString("    #[account(mut)]\n")
		b.WriteString("    pub participant: Account<'info, Participant>,\n")
		b.WriteString("    pub oracle: Signer<'info>,\n")
		b.WriteString("}\n\n")
	}
}

func writeAnchorErrors(b *strings.Builder) {
	b.WriteString("#[error_code]\npub enum GuardrailError {\n")
	b.WriteString("    #[msg(\"contribution refused by compliance checks\")]\n")
	b.WriteString("    ContributionRefused,\n")
	b.WriteString("    #[msg(\"caller is not the oracle\")]\n")
	b.WriteString("    NotOracle,\n")
	b.WriteString("}\n")
}
