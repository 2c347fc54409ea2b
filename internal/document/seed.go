package document

const defaultCanvas = `# Business Model Canvas

## Customer Segments
Independent retailers with 1-20 stores moving inventory online.

## Value Propositions
One dashboard for stock, pricing and online orders across every store.

## Channels
- Direct sales to regional retail associations
- Self-serve signup from the marketing site

## Customer Relationships
Onboarding call for every new account, then self-serve support.

## Revenue Streams
- Monthly subscription: $49 per store
- Transaction fee: 1.5% of online sales

## Key Resources
Inventory sync engine, integrations team.

## Key Activities
Integration maintenance, customer onboarding.

## Key Partnerships
Point-of-sale vendors, payment processors.

## Cost Structure
Engineering salaries, cloud hosting, paid acquisition.
`

const defaultStrategy = `# Strategy

## Vision
Become the default operating system for independent retail.

## Market Analysis
Roughly 180,000 independent retailers in the launch region; fewer than a
third sell online today.

## Go-to-Market
Launch in two pilot regions, then expand through retail associations.
Year-one marketing budget: $200,000.

## Risks
- Point-of-sale vendors ship a competing inventory product
- Slow onboarding limits expansion pace
`

const defaultFinancial = `# Financial Projection

## Assumptions
- 400 paying stores by end of year one
- Subscription price: $39 per store per month

## Revenue
| Year | Stores | Revenue |
|------|--------|---------|
| 1 | 400 | $187,200 |
| 2 | 1,100 | $514,800 |

## Operating Expenses
- Salaries: $420,000
- Hosting: $36,000
- Marketing: $120,000

## Break-even
Month 26 at current burn.
`

const defaultOKRs = `# OKRs

## Objective 1: Grow recurring revenue
- KR1: Increase revenue
- KR2: Improve retention

## Objective 2: Launch the partner channel
- KR1: Sign 5 point-of-sale partners
- KR2: 20% of new stores arrive through partners
`

// DefaultContents returns the content every slot is seeded with.
func DefaultContents() map[Slot]string {
	return map[Slot]string{
		Canvas:              defaultCanvas,
		Strategy:            defaultStrategy,
		FinancialProjection: defaultFinancial,
		OKRs:                defaultOKRs,
	}
}

// DefaultCounts returns the seeded inconsistency counts.
func DefaultCounts() map[Slot]int {
	return map[Slot]int{
		Canvas:              2,
		Strategy:            1,
		FinancialProjection: 1,
		OKRs:                2,
	}
}
