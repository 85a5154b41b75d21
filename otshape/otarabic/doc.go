/*
Package otarabic provides the shaping engine for Arabic and other scripts with
cursive joining (Syriac, N'Ko, Mongolian, Mandaic, Manichaean, Phags-pa, Psalter
Pahlavi, Hanifi Rohingya) for package otshape.

Joining analysis follows the Unicode joining types: every letter is
classified as non-joining, left-, right- or dual-joining, transparent or
join-causing, and a state machine chooses its positional form from its
neighbours. Syriac Alaph and Dalath/Rish have additional final and medial
forms.
*/
package otarabic
